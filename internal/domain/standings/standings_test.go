package standings_test

import (
	"testing"

	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given no entries", t, func() {
		Convey("Then the ranking is empty", func() {
			So(standings.Rank(nil), ShouldBeEmpty)
			So(standings.Rank([]standings.Entry{}), ShouldBeEmpty)
		})
	})

	Convey("Given one user with a mixed set of predictions", t, func() {
		entries := []standings.Entry{
			// Exact on a 2-1.
			{UserID: "u1", UserName: "Uma", HomePred: "2", AwayPred: "1", Result: model.FinalScore(2, 1)},
			// Wrong outcome on a 0-0.
			{UserID: "u1", UserName: "Uma", HomePred: "1", AwayPred: "0", Result: model.FinalScore(0, 0)},
			// Not played yet; must not count, not even as zero.
			{UserID: "u1", UserName: "Uma", HomePred: "3", AwayPred: "0", Result: model.Result{}},
		}

		Convey("When ranking", func() {
			rows := standings.Rank(entries)

			Convey("Then the total is exact plus miss, pending excluded", func() {
				So(rows, ShouldHaveLength, 1)
				So(rows[0].UserID, ShouldEqual, "u1")
				So(rows[0].Points, ShouldEqual, 5)
				So(rows[0].Rank, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a user whose matches are all unplayed", t, func() {
		entries := []standings.Entry{
			{UserID: "ghost", UserName: "Ghost", HomePred: "1", AwayPred: "1", Result: model.Result{}},
			{UserID: "ghost", UserName: "Ghost", HomePred: "2", AwayPred: "0", Result: model.Result{}},
		}

		Convey("Then they do not appear in the ranking at all", func() {
			So(standings.Rank(entries), ShouldBeEmpty)
		})
	})

	Convey("Given entries missing a user id", t, func() {
		entries := []standings.Entry{
			{UserID: "", UserName: "Nobody", HomePred: "2", AwayPred: "1", Result: model.FinalScore(2, 1)},
			{UserID: "u1", UserName: "Uma", HomePred: "2", AwayPred: "1", Result: model.FinalScore(2, 1)},
		}

		Convey("Then the incomplete row is skipped, the rest still rank", func() {
			rows := standings.Rank(entries)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].UserID, ShouldEqual, "u1")
		})
	})

	Convey("Given users tied on points", t, func() {
		entries := []standings.Entry{
			{UserID: "a", UserName: "Beta", HomePred: "2", AwayPred: "1", Result: model.FinalScore(2, 1)},
			{UserID: "b", UserName: "Alpha", HomePred: "2", AwayPred: "1", Result: model.FinalScore(2, 1)},
		}

		Convey("Then name order breaks the tie", func() {
			rows := standings.Rank(entries)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].UserName, ShouldEqual, "Alpha")
			So(rows[0].Rank, ShouldEqual, 1)
			So(rows[1].UserName, ShouldEqual, "Beta")
			So(rows[1].Rank, ShouldEqual, 2)
		})
	})

	Convey("Given users with different totals", t, func() {
		entries := []standings.Entry{
			// Tendency only: 3 points.
			{UserID: "low", UserName: "Low", HomePred: "3", AwayPred: "0", Result: model.FinalScore(1, 0)},
			// Exact: 5 points.
			{UserID: "high", UserName: "High", HomePred: "1", AwayPred: "0", Result: model.FinalScore(1, 0)},
			// Margin: 4 points.
			{UserID: "mid", UserName: "Mid", HomePred: "2", AwayPred: "1", Result: model.FinalScore(1, 0)},
		}

		Convey("Then points descend down the table", func() {
			rows := standings.Rank(entries)
			So(rows, ShouldHaveLength, 3)
			So(rows[0].UserID, ShouldEqual, "high")
			So(rows[0].Points, ShouldEqual, 5)
			So(rows[1].UserID, ShouldEqual, "mid")
			So(rows[1].Points, ShouldEqual, 4)
			So(rows[2].UserID, ShouldEqual, "low")
			So(rows[2].Points, ShouldEqual, 3)
		})
	})

	Convey("Given a malformed stored prediction on a played match", t, func() {
		entries := []standings.Entry{
			{UserID: "u1", UserName: "Uma", HomePred: "x", AwayPred: "2", Result: model.FinalScore(1, 0)},
		}

		Convey("Then the user still appears, with zero points", func() {
			rows := standings.Rank(entries)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Points, ShouldEqual, 0)
		})
	})

	Convey("Given the same input ranked twice", t, func() {
		entries := []standings.Entry{
			{UserID: "a", UserName: "A", HomePred: "1", AwayPred: "0", Result: model.FinalScore(1, 0)},
			{UserID: "b", UserName: "B", HomePred: "0", AwayPred: "1", Result: model.FinalScore(1, 0)},
		}

		Convey("Then each call returns an independent slice", func() {
			first := standings.Rank(entries)
			second := standings.Rank(entries)
			So(first, ShouldResemble, second)
			first[0].Points = 99
			So(second[0].Points, ShouldNotEqual, 99)
		})
	})
}
