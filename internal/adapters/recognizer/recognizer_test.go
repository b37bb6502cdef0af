package recognizer_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/fplpicks/internal/adapters/recognizer"
	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

var png = extract.Image{Name: "team.png", ContentType: "image/png", Data: []byte("\x89PNG-bytes")}

func TestHTTPRecognizer(t *testing.T) {
	ctx := context.Background()

	Convey("Given an inference endpoint", t, func() {
		var gotBody []byte
		var gotType, gotAuth string
		reply := `[{"generated_text":"Saka ARS 9.0"},{"generated_text":"Palmer CHE"}]`
		status := http.StatusOK

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotType = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		rec := recognizer.NewHTTP(srv.URL, recognizer.WithBearerToken("secret"), recognizer.WithTimeout(time.Second))

		Convey("When it answers with a list", func() {
			text, err := rec.Recognize(ctx, png)

			Convey("Then the texts are joined by lines and the image is sent raw", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "Saka ARS 9.0\nPalmer CHE")
				So(string(gotBody), ShouldEqual, "\x89PNG-bytes")
				So(gotType, ShouldEqual, "image/png")
				So(gotAuth, ShouldEqual, "Bearer secret")
			})
		})

		Convey("When it answers with a single object", func() {
			reply = `{"text":"Haaland MCI"}`
			text, err := rec.Recognize(ctx, png)
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "Haaland MCI")
		})

		Convey("When it fails", func() {
			status = http.StatusServiceUnavailable
			reply = "model loading"
			_, err := rec.Recognize(ctx, png)
			So(errors.Is(err, extract.ErrRecognition), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "503")
		})

		Convey("When it returns garbage", func() {
			reply = "<html>"
			_, err := rec.Recognize(ctx, png)
			So(errors.Is(err, extract.ErrRecognition), ShouldBeTrue)
		})
	})
}

type failing struct{ calls int }

func (f *failing) Recognize(context.Context, extract.Image) (string, error) {
	f.calls++
	return "", errors.New("gpu unavailable")
}

func TestBreaker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a breaker around a failing recognizer", t, func() {
		next := &failing{}
		b := recognizer.NewBreaker(next, recognizer.WithMaxFailures(2), recognizer.WithOpenTimeout(time.Minute))

		Convey("When failures reach the limit", func() {
			_, err1 := b.Recognize(ctx, png)
			_, err2 := b.Recognize(ctx, png)
			_, err3 := b.Recognize(ctx, png)

			Convey("Then further calls are refused without reaching the backend", func() {
				So(err1, ShouldNotBeNil)
				So(err2, ShouldNotBeNil)
				So(errors.Is(err3, recognizer.ErrUnavailable), ShouldBeTrue)
				So(errors.Is(err3, extract.ErrRecognition), ShouldBeTrue)
				So(next.calls, ShouldEqual, 2)
				So(b.State(), ShouldEqual, "open")
			})
		})
	})

	Convey("Given a breaker around a working recognizer", t, func() {
		b := recognizer.NewBreaker(recognizer.NewStatic(recognizer.WithText("Saka ARS")))

		text, err := b.Recognize(ctx, png)
		So(err, ShouldBeNil)
		So(text, ShouldEqual, "Saka ARS")
		So(b.State(), ShouldEqual, "closed")
	})

	Convey("Given cancelled calls", t, func() {
		b := recognizer.NewBreaker(recognizer.NewStatic(), recognizer.WithMaxFailures(1))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		for i := 0; i < 3; i++ {
			_, err := b.Recognize(cctx, png)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		}
		So(b.State(), ShouldEqual, "closed")
	})

	Convey("Given a backend slower than the client timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(300 * time.Millisecond):
				_, _ = io.WriteString(w, `{"generated_text":"late"}`)
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		remote := recognizer.NewHTTP(srv.URL, recognizer.WithTimeout(20*time.Millisecond))
		b := recognizer.NewBreaker(remote, recognizer.WithMaxFailures(2), recognizer.WithOpenTimeout(time.Minute))

		Convey("When the timeouts reach the limit", func() {
			_, err1 := b.Recognize(ctx, png)
			_, err2 := b.Recognize(ctx, png)
			_, err3 := b.Recognize(ctx, png)

			Convey("Then they count as failures and the breaker opens", func() {
				So(err1, ShouldNotBeNil)
				So(errors.Is(err1, recognizer.ErrUnavailable), ShouldBeFalse)
				So(err2, ShouldNotBeNil)
				So(errors.Is(err3, recognizer.ErrUnavailable), ShouldBeTrue)
				So(b.State(), ShouldEqual, "open")
			})
		})
	})

	Convey("Given a caller deadline shorter than the backend", t, func() {
		b := recognizer.NewBreaker(
			recognizer.NewStatic(recognizer.WithLatencyRange(time.Second, time.Second)),
			recognizer.WithMaxFailures(1),
		)

		for i := 0; i < 3; i++ {
			cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
			_, err := b.Recognize(cctx, png)
			cancel()
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		}
		So(b.State(), ShouldEqual, "closed")
	})
}

func TestStaticRecognizer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a static recognizer with per-image text", t, func() {
		s := recognizer.NewStatic(
			recognizer.WithText("default"),
			recognizer.WithImageText("team.png", "Saka ARS"),
			recognizer.WithLatencyRange(time.Millisecond, 3*time.Millisecond),
		)

		text, err := s.Recognize(ctx, png)
		So(err, ShouldBeNil)
		So(text, ShouldEqual, "Saka ARS")

		text, err = s.Recognize(ctx, extract.Image{Name: "other.png"})
		So(err, ShouldBeNil)
		So(text, ShouldEqual, "default")
	})

	Convey("Given a slow recognizer and a short deadline", t, func() {
		s := recognizer.NewStatic(recognizer.WithLatencyRange(time.Second, time.Second))
		cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
		defer cancel()

		_, err := s.Recognize(cctx, png)
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
	})
}
