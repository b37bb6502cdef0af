package live_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/fplpicks/internal/adapters/http/live"
	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/aggregate"
	"github.com/okian/fplpicks/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fixedSource struct{ view service.CommunityView }

func (f fixedSource) Community(context.Context, int) (service.CommunityView, error) {
	return f.view, nil
}

func waitClients(h *live.Hub, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Clients() == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func dial(srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	So(err, ShouldBeNil)
	So(resp.StatusCode, ShouldEqual, http.StatusSwitchingProtocols)
	return conn
}

func read(conn *websocket.Conn) live.Message {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg live.Message
	So(conn.ReadJSON(&msg), ShouldBeNil)
	return msg
}

func TestHub(t *testing.T) {
	Convey("Given a running hub behind a server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		hub := live.NewHub()
		go hub.Run(ctx)

		mux := http.NewServeMux()
		live.NewHandler(hub, fixedSource{view: service.CommunityView{Period: 15, Stats: aggregate.Stats{Submissions: 2}}}).
			Register(ctx, mux)
		srv := httptest.NewServer(mux)
		Reset(func() {
			cancel()
			srv.Close()
		})

		Convey("When a client connects", func() {
			conn := dial(srv)
			defer func() { _ = conn.Close() }()

			Convey("Then it receives the current snapshot", func() {
				msg := read(conn)
				So(msg.Type, ShouldEqual, "community")
				So(msg.Period, ShouldEqual, 15)
				So(msg.Stats.Submissions, ShouldEqual, 2)
			})

			Convey("Then broadcasts reach it", func() {
				_ = read(conn)
				So(waitClients(hub, 1), ShouldBeTrue)

				hub.Broadcast(ctx, 16, aggregate.Stats{Submissions: 5})
				msg := read(conn)
				So(msg.Period, ShouldEqual, 16)
				So(msg.Stats.Submissions, ShouldEqual, 5)
			})

			Convey("Then disconnecting unregisters it", func() {
				So(waitClients(hub, 1), ShouldBeTrue)
				_ = conn.Close()
				So(waitClients(hub, 0), ShouldBeTrue)
			})

			Convey("Then stopping the hub closes the connection", func() {
				_ = read(conn)
				So(waitClients(hub, 1), ShouldBeTrue)
				cancel()

				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, _, err := conn.ReadMessage()
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a plain HTTP request arrives", func() {
			resp, err := http.Get(srv.URL + "/live")
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	Convey("Given a hub that is not running", t, func() {
		hub := live.NewHub()

		Convey("Then broadcasts never block", func() {
			done := make(chan struct{})
			go func() {
				for i := 0; i < 200; i++ {
					hub.Broadcast(context.Background(), 1, aggregate.Stats{})
				}
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("broadcast blocked")
			}
			So(hub.Clients(), ShouldEqual, 0)
		})
	})
}
