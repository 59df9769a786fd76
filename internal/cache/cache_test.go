package cache

import (
	"testing"

	"github.com/kinocast-cli/kinocast/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

type listing struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func TestCache(t *testing.T) {
	Convey("Search listing cache", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		Convey("GenerateKey is deterministic and case-insensitive", func() {
			a := GenerateKey("The Matrix", "filmpalast")
			b := GenerateKey("the matrix", "filmpalast")
			c := GenerateKey("the matrix", "other")

			So(a, ShouldEqual, b)
			So(a, ShouldNotEqual, c)
		})

		Convey("Write then Read round-trips", func() {
			key := GenerateKey("dune", "filmpalast")
			want := []listing{{Title: "Dune (2021)", URL: "https://example.com/stream/dune"}}

			So(Write(key, want), ShouldBeNil)

			var got []listing
			So(Read(key, &got), ShouldBeTrue)
			So(got, ShouldResemble, want)
		})

		Convey("Read misses on unknown key", func() {
			var got []listing
			So(Read(GenerateKey("nope", "filmpalast"), &got), ShouldBeFalse)
		})
	})
}
