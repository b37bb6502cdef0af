package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given a buffer as output", t, func() {
		var buf bytes.Buffer

		Convey("When initialised with JSON format", func() {
			So(Init(WithOutput(&buf), WithFormat("json")), ShouldBeNil)
			Named("gate").Info(context.Background(), "submitted",
				String("session", "abc"),
				Int("players", 15),
				Bool("fallback", false),
				Duration("took", time.Millisecond),
			)

			Convey("Then the line carries fields, group and source", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "submitted")
				group, ok := line["gate"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["session"], ShouldEqual, "abc")
				So(group["players"], ShouldEqual, float64(15))
				So(group["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When fields are bound and carried by the context", func() {
			So(Init(WithOutput(&buf), WithFormat("json")), ShouldBeNil)
			ctx := ContextWith(context.Background(), String("job_id", "j1"))
			ctx = ContextWith(ctx, String("session_id", "s1"))
			Get().With(String("component", "extract")).Warn(ctx, "fallback used")

			Convey("Then every field reaches the line", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["level"], ShouldEqual, "WARN")
				So(line["component"], ShouldEqual, "extract")
				So(line["job_id"], ShouldEqual, "j1")
				So(line["session_id"], ShouldEqual, "s1")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
				So(FromContext(context.Background()), ShouldBeEmpty)
			})
		})

		Convey("When initialised with an unknown format", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
		})

		Convey("When the level is raised", func() {
			So(Init(WithOutput(&buf)), ShouldBeNil)
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Error(context.Background(), "shown", Error(errors.New("boom")))

			So(buf.String(), ShouldNotContainSubstring, "hidden")
			So(buf.String(), ShouldContainSubstring, "boom")
			SetLevel(slog.LevelInfo)
		})

		Convey("When an unknown level is given", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})

		Convey("Then Sync never fails", func() {
			So(Init(WithOutput(&buf)), ShouldBeNil)
			So(Sync(), ShouldBeNil)
		})
	})
}
