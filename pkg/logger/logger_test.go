package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		defer SetLevel(slog.LevelInfo)

		Convey("When logging through Get and Named", func() {
			Get().Info(context.Background(), "ready", String("addr", ":8080"))
			Named("api").Warn(context.Background(), "slow", Duration("took", time.Second))

			Convey("Then both lines are written with their fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=ready")
				So(out, ShouldContainSubstring, "addr=:8080")
				So(out, ShouldContainSubstring, "component=api")
				So(out, ShouldContainSubstring, "took=1s")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")

			Convey("Then lower levels are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(Level(), ShouldEqual, slog.LevelError)
			})
		})

		Convey("When Sync is called", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		l := New(WithWriter(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

		Convey("When logging with a request id in the context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			l.Debug(ctx, "lookup", Int("count", 3), Bool("live", true), Error(errors.New("boom")))

			Convey("Then the record decodes with every field", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "lookup")
				So(rec["count"], ShouldEqual, float64(3))
				So(rec["live"], ShouldEqual, true)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["request_id"], ShouldEqual, "req-1")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})
	})
}

func TestLoggerFatal(t *testing.T) {
	Convey("Given a logger with a captured exit", t, func() {
		var buf bytes.Buffer
		code := -1
		l := &slogLogger{logger: slog.New(slog.NewTextHandler(&buf, nil)), exit: func(c int) { code = c }}

		l.Fatal(context.Background(), "fatal")

		So(code, ShouldEqual, 1)
		So(buf.String(), ShouldContainSubstring, "level=ERROR")
	})
}

func TestParseLevel(t *testing.T) {
	Convey("Given level names", t, func() {
		cases := map[string]slog.Level{
			"debug": slog.LevelDebug, "":   slog.LevelInfo, " INFO ": slog.LevelInfo,
			"warn": slog.LevelWarn, "warning": slog.LevelWarn, "Error": slog.LevelError,
		}
		for in, want := range cases {
			lv, err := ParseLevel(in)
			So(err, ShouldBeNil)
			So(lv, ShouldEqual, want)
		}

		_, err := ParseLevel("verbose")
		So(err, ShouldNotBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := NewNop().Named("x")
		So(func() { l.Error(context.Background(), strings.Repeat("x", 10)) }, ShouldNotPanic)
	})
}
