package mcptools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/match"
	"github.com/okian/fplpicks/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func newTools() *Server {
	svc := service.New()
	return New(svc, WithVersion("test"))
}

func text(res *mcp.CallToolResult) string {
	So(res.Content, ShouldHaveLength, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	So(ok, ShouldBeTrue)
	return tc.Text
}

func TestSearchPlayers(t *testing.T) {
	ctx := context.Background()

	Convey("Given the tools over the default catalog", t, func() {
		s := newTools()

		Convey("When searching by name", func() {
			res, _, err := s.searchPlayers(ctx, nil, SearchArgs{Query: "saka"})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)

			var players []catalog.Player
			So(json.Unmarshal([]byte(text(res)), &players), ShouldBeNil)
			So(players[0].ID, ShouldEqual, 18)
		})

		Convey("When a limit is given", func() {
			res, _, _ := s.searchPlayers(ctx, nil, SearchArgs{Position: "FWD", Limit: 2})
			var players []catalog.Player
			So(json.Unmarshal([]byte(text(res)), &players), ShouldBeNil)
			So(players, ShouldHaveLength, 2)
			So(players[0].Position, ShouldEqual, catalog.Forward)
		})

		Convey("When the position is unknown", func() {
			res, _, err := s.searchPlayers(ctx, nil, SearchArgs{Position: "SW"})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldStartWith, "error:")
		})
	})
}

func TestMatchNames(t *testing.T) {
	ctx := context.Background()

	Convey("Given the tools", t, func() {
		s := newTools()

		Convey("When names are matched", func() {
			res, _, err := s.matchNames(ctx, nil, MatchArgs{Names: []string{"Saka", "Nobody"}})
			So(err, ShouldBeNil)

			var out match.Result
			So(json.Unmarshal([]byte(text(res)), &out), ShouldBeNil)
			So(out.Players, ShouldHaveLength, 1)
			So(out.Unmatched, ShouldResemble, []string{"Nobody"})
		})

		Convey("When no names are given", func() {
			res, _, _ := s.matchNames(ctx, nil, MatchArgs{})
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, ErrNoNames.Error())
		})
	})
}

func TestCommunityStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given the tools", t, func() {
		s := newTools()

		Convey("When a period is requested", func() {
			res, _, err := s.communityStats(ctx, nil, CommunityArgs{Period: 4})
			So(err, ShouldBeNil)

			var view service.CommunityView
			So(json.Unmarshal([]byte(text(res)), &view), ShouldBeNil)
			So(view.Period, ShouldEqual, 4)
			So(view.Stats.Submissions, ShouldEqual, 0)
		})

		Convey("When the period is negative", func() {
			res, _, _ := s.communityStats(ctx, nil, CommunityArgs{Period: -1})
			So(res.IsError, ShouldBeTrue)
		})
	})
}

func TestStreamableHTTP(t *testing.T) {
	Convey("Given the tools mounted on a mux", t, func() {
		mux := http.NewServeMux()
		newTools().Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		Convey("When a client initializes", func() {
			body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"probe","version":"1"}}}`
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/mcp", strings.NewReader(body))
			So(err, ShouldBeNil)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json, text/event-stream")

			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var out struct {
				Result struct {
					ServerInfo struct {
						Name    string `json:"name"`
						Version string `json:"version"`
					} `json:"serverInfo"`
				} `json:"result"`
			}
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
			So(out.Result.ServerInfo.Name, ShouldEqual, "fplpicks")
			So(out.Result.ServerInfo.Version, ShouldEqual, "test")
		})
	})
}
