package scoreboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hexpel/copycatch/internal/adapters/scoreboard"
	. "github.com/smartystreets/goconvey/convey"
)

const snapshotPayload = `{
	"items": [
		{"id": 1, "name": "alice", "score": 500, "solvedChallenges": [
			{"id": 10, "time": 1000, "score": 250}
		]}
	],
	"challenges": {
		"web": [{"id": 10, "title": "alpha", "score": 250, "category": "web", "solved": 1}]
	}
}`

func TestClientSnapshot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scoreboard endpoint", t, func() {
		var hits int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&hits, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(snapshotPayload))
		}))
		defer srv.Close()

		cachePath := filepath.Join(t.TempDir(), "snapshot.json")
		client := scoreboard.New(srv.URL,
			scoreboard.WithCachePath(cachePath),
			scoreboard.WithMaxAge(time.Minute),
		)

		Convey("When fetched for the first time", func() {
			snap, capturedAt, err := client.Snapshot(ctx, false)

			So(err, ShouldBeNil)
			So(snap.Items, ShouldHaveLength, 1)
			So(snap.Items[0].Name, ShouldEqual, "alice")
			So(capturedAt.IsZero(), ShouldBeFalse)
			So(atomic.LoadInt64(&hits), ShouldEqual, 1)

			Convey("And the snapshot is cached on disk", func() {
				_, statErr := os.Stat(cachePath)
				So(statErr, ShouldBeNil)

				at, ok := client.CachedAt()
				So(ok, ShouldBeTrue)
				So(time.Since(at), ShouldBeLessThan, time.Minute)
			})

			Convey("And a second read is served from the cache", func() {
				_, _, err := client.Snapshot(ctx, false)
				So(err, ShouldBeNil)
				So(atomic.LoadInt64(&hits), ShouldEqual, 1)
			})

			Convey("And a forced refresh bypasses the cache", func() {
				_, _, err := client.Snapshot(ctx, true)
				So(err, ShouldBeNil)
				So(atomic.LoadInt64(&hits), ShouldEqual, 2)
			})
		})

		Convey("When the cache has gone stale", func() {
			shortLived := scoreboard.New(srv.URL,
				scoreboard.WithCachePath(cachePath),
				scoreboard.WithMaxAge(time.Nanosecond),
			)

			_, _, err := shortLived.Snapshot(ctx, false)
			So(err, ShouldBeNil)

			_, _, err = shortLived.Snapshot(ctx, false)
			So(err, ShouldBeNil)
			So(atomic.LoadInt64(&hits), ShouldEqual, 2)
		})
	})

	Convey("Given no endpoint is configured", t, func() {
		client := scoreboard.New("",
			scoreboard.WithCachePath(filepath.Join(t.TempDir(), "none.json")),
		)

		Convey("Then a fetch fails with the endpoint error", func() {
			_, _, err := client.Snapshot(ctx, true)
			So(errors.Is(err, scoreboard.ErrNoEndpoint), ShouldBeTrue)
		})
	})

	Convey("Given an endpoint that returns a server error", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := scoreboard.New(srv.URL,
			scoreboard.WithCachePath(filepath.Join(t.TempDir(), "err.json")),
		)

		Convey("Then the fetch error is surfaced", func() {
			_, _, err := client.Snapshot(context.Background(), true)
			So(errors.Is(err, scoreboard.ErrFetch), ShouldBeTrue)
		})
	})

	Convey("Given an endpoint that returns malformed JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer srv.Close()

		client := scoreboard.New(srv.URL,
			scoreboard.WithCachePath(filepath.Join(t.TempDir(), "bad.json")),
		)

		Convey("Then the decode error is surfaced", func() {
			_, _, err := client.Snapshot(context.Background(), true)
			So(errors.Is(err, scoreboard.ErrDecode), ShouldBeTrue)
		})
	})
}
