package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/matchboard/internal/adapters/http/sse"
	. "github.com/smartystreets/goconvey/convey"
)

func receive(ch chan []byte, timeout time.Duration) (string, bool) {
	select {
	case msg, ok := <-ch:
		return string(msg), ok
	case <-time.After(timeout):
		return "", false
	}
}

func waitForClients(b *sse.Broker, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroker(t *testing.T) {
	Convey("Given a broker with one subscriber", t, func() {
		b := sse.NewBroker(50 * time.Millisecond)
		defer b.Close()
		ch := b.Subscribe()
		So(b.ClientCount(), ShouldEqual, 1)

		Convey("When an event is published", func() {
			b.Publish("match.advanced", map[string]string{"id": "match-1"})

			Convey("Then it arrives framed as SSE", func() {
				msg, ok := receive(ch, time.Second)
				So(ok, ShouldBeTrue)
				So(msg, ShouldStartWith, "id: 1\n")
				So(msg, ShouldContainSubstring, "event: match.advanced\n")
				So(msg, ShouldContainSubstring, `data: {"id":"match-1"}`)
				So(msg, ShouldEndWith, "\n\n")
			})
		})

		Convey("When many coalesced events arrive inside one window", func() {
			for i := 0; i < 5; i++ {
				b.Coalesce("funnel.updated", map[string]int{"n": i})
			}

			Convey("Then only the latest is delivered", func() {
				msg, ok := receive(ch, time.Second)
				So(ok, ShouldBeTrue)
				So(msg, ShouldContainSubstring, `data: {"n":4}`)

				_, more := receive(ch, 150*time.Millisecond)
				So(more, ShouldBeFalse)
			})
		})

		Convey("When the subscriber leaves", func() {
			b.Unsubscribe(ch)

			Convey("Then its channel is closed", func() {
				_, ok := <-ch
				So(ok, ShouldBeFalse)
				So(b.ClientCount(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a closed broker", t, func() {
		b := sse.NewBroker(0)
		b.Close()

		Convey("Then calls are harmless", func() {
			ch := b.Subscribe()
			_, ok := <-ch
			So(ok, ShouldBeFalse)
			So(b.ClientCount(), ShouldEqual, 0)
			So(func() { b.Publish("x", nil) }, ShouldNotPanic)
			So(func() { b.Close() }, ShouldNotPanic)
		})
	})
}

func TestBrokerHTTP(t *testing.T) {
	Convey("Given the stream endpoint", t, func() {
		b := sse.NewBroker(10 * time.Millisecond)
		defer b.Close()
		srv := httptest.NewServer(b)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		resp, err := http.DefaultClient.Do(req)
		So(err, ShouldBeNil)
		defer resp.Body.Close()

		Convey("When an event is published", func() {
			waitForClients(b, 1)
			b.Publish("dataset.regenerated", map[string]int{"attendees": 12})

			Convey("Then the client reads it from the stream", func() {
				So(resp.Header.Get("Content-Type"), ShouldEqual, "text/event-stream")

				lines := make(chan string, 16)
				go func() {
					sc := bufio.NewScanner(resp.Body)
					for sc.Scan() {
						lines <- sc.Text()
					}
					close(lines)
				}()

				var got []string
				timeout := time.After(2 * time.Second)
				for len(got) == 0 || !strings.HasPrefix(got[len(got)-1], "data:") {
					select {
					case l, ok := <-lines:
						if !ok {
							t.Fatal("stream closed")
						}
						if l != "" {
							got = append(got, l)
						}
					case <-timeout:
						t.Fatal("no event received")
					}
				}
				So(got, ShouldContain, "event: dataset.regenerated")
				So(got[len(got)-1], ShouldEqual, `data: {"attendees":12}`)
			})
		})
	})
}
