package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEnsure(t *testing.T) {
	Convey("Given an empty context", t, func() {
		ctx, id := Ensure(context.Background())

		Convey("Then a uuid is generated and stored", func() {
			_, err := uuid.Parse(id)
			So(err, ShouldBeNil)
			So(FromContext(ctx), ShouldEqual, id)
		})

		Convey("And a second call keeps it", func() {
			_, again := Ensure(ctx)
			So(again, ShouldEqual, id)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the middleware", t, func() {
		var seen string
		h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
		}))

		Convey("When the request carries an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(Header, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is reused", func() {
				So(seen, ShouldEqual, "abc-123")
				So(w.Header().Get(Header), ShouldEqual, "abc-123")
			})
		})

		Convey("When the inbound id is oversized", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(Header, strings.Repeat("x", 500))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then a new one is assigned", func() {
				So(len(seen), ShouldEqual, 36)
				So(w.Header().Get(Header), ShouldEqual, seen)
			})
		})
	})
}
