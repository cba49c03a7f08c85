package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/prode/internal/adapters/http/api"
	service "github.com/okian/prode/internal/app"
	"github.com/okian/prode/internal/config"
	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
	"github.com/okian/prode/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// TestMain initializes the global logger required by Service.Start,
// mirroring the setup done by the binaries in cmd/.
func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestServer boots a memory-backed service behind the full router.
func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	svc := service.New(
		service.WithStoreDriver(config.StoreMemory),
		service.WithFixtureCSV("testdata/does-not-exist.csv"),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	srv := api.NewServer(svc, svc, api.WithMaxStandingsLimit(50))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, svc
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestUsersEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("When posting a new user", func() {
			var user model.User
			status := doJSON(t, http.MethodPost, ts.URL+"/users", map[string]string{"name": "Alice"}, &user)

			Convey("Then the user is created", func() {
				So(status, ShouldEqual, http.StatusCreated)
				So(user.Name, ShouldEqual, "Alice")
				So(user.ID, ShouldNotBeEmpty)
			})

			Convey("Then listing users includes it", func() {
				var users []model.User
				status := doJSON(t, http.MethodGet, ts.URL+"/users", nil, &users)
				So(status, ShouldEqual, http.StatusOK)
				So(users, ShouldHaveLength, 1)
			})
		})

		Convey("When posting a blank name", func() {
			status := doJSON(t, http.MethodPost, ts.URL+"/users", map[string]string{"name": "  "}, nil)

			Convey("Then the request is rejected", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting malformed JSON", func() {
			resp, err := http.Post(ts.URL+"/users", "application/json", bytes.NewBufferString("{"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestFixtureAndPredictionEndpoints(t *testing.T) {
	Convey("Given the API server with a user and the seeded fixture", t, func() {
		ts, svc := newTestServer(t)
		ctx := context.Background()
		user, err := svc.CreateUser(ctx, "Bob")
		So(err, ShouldBeNil)

		var matches []model.Match
		So(doJSON(t, http.MethodGet, ts.URL+"/matches", nil, &matches), ShouldEqual, http.StatusOK)
		So(len(matches), ShouldBeGreaterThan, 0)

		Convey("When requesting the fixture without user_id", func() {
			status := doJSON(t, http.MethodGet, ts.URL+"/fixture", nil, nil)

			Convey("Then the request is rejected", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting the fixture for an unknown user", func() {
			status := doJSON(t, http.MethodGet, ts.URL+"/fixture?user_id=nope", nil, nil)

			Convey("Then a 404 is returned", func() {
				So(status, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When submitting a prediction", func() {
			var pred model.Prediction
			status := doJSON(t, http.MethodPut,
				fmt.Sprintf("%s/matches/%s/prediction", ts.URL, matches[0].ID),
				map[string]string{"user_id": user.ID, "home_pred": "2", "away_pred": "0"},
				&pred)

			Convey("Then it is stored and shows up in the fixture view", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(pred.HomePred, ShouldEqual, "2")

				var view api.FixtureView
				status := doJSON(t, http.MethodGet, ts.URL+"/fixture?user_id="+user.ID, nil, &view)
				So(status, ShouldEqual, http.StatusOK)
				So(view.Stats.Predicted, ShouldEqual, 1)
			})
		})

		Convey("When submitting a non-numeric prediction", func() {
			status := doJSON(t, http.MethodPut,
				fmt.Sprintf("%s/matches/%s/prediction", ts.URL, matches[0].ID),
				map[string]string{"user_id": user.ID, "home_pred": "two", "away_pred": "0"},
				nil)

			Convey("Then the request is rejected", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When recording a result", func() {
			status := doJSON(t, http.MethodPut,
				fmt.Sprintf("%s/matches/%s/result", ts.URL, matches[0].ID),
				map[string]int{"home_goals": 3, "away_goals": 1},
				nil)

			Convey("Then the match shows the final score", func() {
				So(status, ShouldEqual, http.StatusOK)

				var after []model.Match
				So(doJSON(t, http.MethodGet, ts.URL+"/matches", nil, &after), ShouldEqual, http.StatusOK)
				for _, m := range after {
					if m.ID == matches[0].ID {
						So(m.Result.Played, ShouldBeTrue)
						So(m.Result.HomeGoals, ShouldEqual, 3)
					}
				}
			})
		})

		Convey("When recording a result with a missing field", func() {
			status := doJSON(t, http.MethodPut,
				fmt.Sprintf("%s/matches/%s/result", ts.URL, matches[0].ID),
				map[string]int{"home_goals": 3},
				nil)

			Convey("Then the request is rejected", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When recording a result for an unknown match", func() {
			status := doJSON(t, http.MethodPut, ts.URL+"/matches/ghost/result",
				map[string]int{"home_goals": 1, "away_goals": 1}, nil)

			Convey("Then a 404 is returned", func() {
				So(status, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStandingsEndpoints(t *testing.T) {
	Convey("Given two users with scored predictions", t, func() {
		ts, svc := newTestServer(t)
		ctx := context.Background()

		sharp, err := svc.CreateUser(ctx, "Sharp")
		So(err, ShouldBeNil)
		blunt, err := svc.CreateUser(ctx, "Blunt")
		So(err, ShouldBeNil)
		matches, err := svc.Matches(ctx)
		So(err, ShouldBeNil)

		_, err = svc.SubmitPrediction(ctx, matches[0].ID, sharp.ID, "2", "1")
		So(err, ShouldBeNil)
		_, err = svc.SubmitPrediction(ctx, matches[0].ID, blunt.ID, "0", "3")
		So(err, ShouldBeNil)
		So(svc.RecordResult(ctx, matches[0].ID, 2, 1), ShouldBeNil)

		Convey("When fetching global standings", func() {
			var rows []standings.Row
			status := doJSON(t, http.MethodGet, ts.URL+"/standings", nil, &rows)

			Convey("Then rows come ranked, best first", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].UserName, ShouldEqual, "Sharp")
				So(rows[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When fetching standings with limit=1", func() {
			var rows []standings.Row
			status := doJSON(t, http.MethodGet, ts.URL+"/standings?limit=1", nil, &rows)

			Convey("Then the table is capped", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(rows, ShouldHaveLength, 1)
			})
		})

		Convey("When fetching standings with a bad limit", func() {
			status := doJSON(t, http.MethodGet, ts.URL+"/standings?limit=bogus", nil, nil)

			Convey("Then the request is rejected", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestPoolEndpoints(t *testing.T) {
	Convey("Given the API server with two users", t, func() {
		ts, svc := newTestServer(t)
		ctx := context.Background()

		owner, err := svc.CreateUser(ctx, "Owner")
		So(err, ShouldBeNil)
		friend, err := svc.CreateUser(ctx, "Friend")
		So(err, ShouldBeNil)

		Convey("When creating a pool", func() {
			var pool model.Pool
			status := doJSON(t, http.MethodPost, ts.URL+"/pools",
				map[string]string{"name": "Office League", "owner_id": owner.ID}, &pool)

			Convey("Then the pool carries a join code", func() {
				So(status, ShouldEqual, http.StatusCreated)
				So(pool.Code, ShouldHaveLength, 6)
			})

			Convey("Then a friend can join by code", func() {
				So(status, ShouldEqual, http.StatusCreated)

				var joinResp struct {
					Pool   model.Pool `json:"pool"`
					Joined bool       `json:"joined"`
				}
				status := doJSON(t, http.MethodPost, ts.URL+"/pools/join",
					map[string]string{"code": pool.Code, "user_id": friend.ID}, &joinResp)
				So(status, ShouldEqual, http.StatusOK)
				So(joinResp.Joined, ShouldBeTrue)
				So(joinResp.Pool.ID, ShouldEqual, pool.ID)

				Convey("And the membership list reflects it", func() {
					var memberships []struct {
						Pool model.Pool `json:"pool"`
						Role string     `json:"role"`
					}
					status := doJSON(t, http.MethodGet, ts.URL+"/pools?user_id="+friend.ID, nil, &memberships)
					So(status, ShouldEqual, http.StatusOK)
					So(memberships, ShouldHaveLength, 1)
					So(memberships[0].Role, ShouldEqual, model.RoleMember)
				})

				Convey("And pool standings scope to members", func() {
					matches, err := svc.Matches(ctx)
					So(err, ShouldBeNil)
					_, err = svc.SubmitPrediction(ctx, matches[0].ID, owner.ID, "1", "0")
					So(err, ShouldBeNil)
					So(svc.RecordResult(ctx, matches[0].ID, 1, 0), ShouldBeNil)

					var resp struct {
						Pool      model.Pool      `json:"pool"`
						Standings []standings.Row `json:"standings"`
					}
					status := doJSON(t, http.MethodGet,
						fmt.Sprintf("%s/pools/%s/standings", ts.URL, pool.ID), nil, &resp)
					So(status, ShouldEqual, http.StatusOK)
					So(resp.Pool.ID, ShouldEqual, pool.ID)
					So(resp.Standings, ShouldHaveLength, 1)
					So(resp.Standings[0].UserName, ShouldEqual, "Owner")
				})
			})
		})

		Convey("When joining with an unknown code", func() {
			status := doJSON(t, http.MethodPost, ts.URL+"/pools/join",
				map[string]string{"code": "NOPE99", "user_id": friend.ID}, nil)

			Convey("Then a 404 is returned", func() {
				So(status, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("When probing /healthz", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it answers OK", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When fetching /stats", func() {
			var stats map[string]any
			status := doJSON(t, http.MethodGet, ts.URL+"/stats", nil, &stats)

			Convey("Then service state is reported", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}
