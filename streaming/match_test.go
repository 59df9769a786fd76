package streaming

import (
	"testing"

	"github.com/kinocast-cli/kinocast/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSplitYear(t *testing.T) {
	Convey("SplitYear", t, func() {
		title, year := SplitYear("Dune (2021)")
		So(title, ShouldEqual, "Dune")
		So(year, ShouldEqual, 2021)

		title, year = SplitYear("Dune")
		So(title, ShouldEqual, "Dune")
		So(year, ShouldEqual, 0)
	})
}

func TestNormalizeTitle(t *testing.T) {
	Convey("NormalizeTitle", t, func() {
		So(NormalizeTitle("  The   MATRIX "), ShouldEqual, "the matrix")
	})
}

func TestBestMatch(t *testing.T) {
	Convey("BestMatch", t, func() {
		viper.Set(key.MatchSimilarityThreshold, 60)

		candidates := []Candidate{
			{Title: "The Matrix Reloaded (2003)", URL: "/reloaded"},
			{Title: "The Matrix (1999)", URL: "/matrix"},
			{Title: "The Matrix Revolutions (2003)", URL: "/revolutions"},
		}

		Convey("Exact case-insensitive match wins", func() {
			match, ok := BestMatch(TitleQuery{Title: "the matrix"}, candidates)
			So(ok, ShouldBeTrue)
			So(match.URL, ShouldEqual, "/matrix")
		})

		Convey("Fuzzy match picks the closest candidate", func() {
			match, ok := BestMatch(TitleQuery{Title: "matrix reloded"}, candidates)
			So(ok, ShouldBeTrue)
			So(match.URL, ShouldEqual, "/reloaded")
		})

		Convey("Year breaks ties between equally similar candidates", func() {
			remakes := []Candidate{
				{Title: "Suspiria (1977)", URL: "/original"},
				{Title: "Suspiria (2018)", URL: "/remake"},
			}

			match, ok := BestMatch(TitleQuery{Title: "Suspiria", Year: 2018}, remakes)
			So(ok, ShouldBeTrue)
			So(match.URL, ShouldEqual, "/remake")

			match, ok = BestMatch(TitleQuery{Title: "Suspiria", Year: 1977}, remakes)
			So(ok, ShouldBeTrue)
			So(match.URL, ShouldEqual, "/original")
		})

		Convey("Dissimilar titles are rejected", func() {
			_, ok := BestMatch(TitleQuery{Title: "completely unrelated film"}, candidates)
			So(ok, ShouldBeFalse)
		})

		Convey("Empty listing yields no match", func() {
			_, ok := BestMatch(TitleQuery{Title: "anything"}, nil)
			So(ok, ShouldBeFalse)
		})
	})
}
