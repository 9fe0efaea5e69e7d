package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/identity"
	"github.com/anchal00/blackjack/internal/logger"
	serviceMock "github.com/anchal00/blackjack/internal/server/mocks"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type accountsStub struct{}

func (accountsStub) EnsureAccount(participantID, username, firstName string) (*db.Account, error) {
	return &db.Account{ParticipantID: participantID, Username: username, FirstName: firstName, Balance: 1000}, nil
}

type GameServerTestSuite struct {
	suite.Suite
	serviceMock *serviceMock.GameService
	connStore   *InMemoryConnectionStore
	static      string
	server      *httptest.Server
}

func (suite *GameServerTestSuite) SetupTest() {
	suite.serviceMock = serviceMock.NewGameService(suite.T())
	suite.connStore = NewConnectionStore(logger.Discard())
	suite.static = suite.T().TempDir()
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.static, "index.html"), []byte("<html>lobby</html>"), 0o644))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.static, "app.js"), []byte("console.log(1)"), 0o644))
	auth := identity.NewResolver(identity.NewTelegramVerifier("123:token"), identity.NewTokens("secret"), accountsStub{}, true, logger.Discard())
	gs := NewGameServer(suite.serviceMock, auth, suite.connStore, ServerOptions{Port: "9999", StaticDir: suite.static}, logger.Discard())
	suite.server = httptest.NewServer(gs.Handler())
}

func (suite *GameServerTestSuite) TearDownTest() {
	suite.server.Close()
}

func TestGameServerSuite(t *testing.T) {
	suite.Run(t, new(GameServerTestSuite))
}

func ReadResponseBody(response *http.Response) ([]byte, error) {
	defer response.Body.Close()
	return io.ReadAll(response.Body)
}

func (suite *GameServerTestSuite) apiCall(method, path, participantID string, body any) (int, map[string]any) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewBuffer(data)
	}
	req, err := http.NewRequest(method, suite.server.URL+HTTP_API_PREFIX+path, reader)
	suite.Require().NoError(err)
	if len(participantID) != 0 {
		req.Header.Set(identity.DevUserIDHeader, participantID)
	}
	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	respBody, err := ReadResponseBody(resp)
	suite.Require().NoError(err)
	decoded := map[string]any{}
	if len(respBody) != 0 {
		suite.Require().NoError(json.Unmarshal(respBody, &decoded), string(respBody))
	}
	return resp.StatusCode, decoded
}

func (suite *GameServerTestSuite) TestCreateTable() {
	tests := []struct {
		description        string
		body               any
		serviceErr         error
		expectedStatusCode int
		expectedKind       string
	}{
		{"Test with valid create table request", map[string]any{"name": "vip", "startChips": 100}, nil, http.StatusCreated, ""},
		{"Test with short table name", map[string]any{"name": "v", "startChips": 100}, game.ErrInvalidTableName, http.StatusBadRequest, "validation"},
		{"Test with unaffordable start chips", map[string]any{"name": "vip", "startChips": 5000}, game.ErrInsufficientChips, http.StatusBadRequest, "capacity"},
		{"Test with malformed body", "not an object", nil, http.StatusBadRequest, "validation"},
	}
	for _, tc := range tests {
		suite.Run(tc.description, func() {
			if req, ok := tc.body.(map[string]any); ok {
				call := suite.serviceMock.On("CreateTable", "7", req["name"], int64(req["startChips"].(int)), "").Once()
				if tc.serviceErr != nil {
					call.Return(nil, tc.serviceErr)
				} else {
					call.Return(&db.Table{ID: 3, Name: "vip", CreatorID: "7", StartChips: 100, Status: db.TableWaiting}, nil)
				}
			}
			status, body := suite.apiCall("POST", "/tables", "7", tc.body)
			suite.Equal(tc.expectedStatusCode, status)
			if tc.expectedStatusCode != http.StatusCreated {
				suite.Equal(false, body["ok"])
				suite.Equal(tc.expectedKind, body["kind"])
				return
			}
			suite.Equal(true, body["ok"])
			table := body["table"].(map[string]any)
			suite.Equal(float64(3), table["id"])
			suite.NotContains(table, "password")
		})
	}
}

func (suite *GameServerTestSuite) TestRequiresCredentials() {
	status, body := suite.apiCall("GET", "/me", "", nil)
	suite.Equal(http.StatusUnauthorized, status)
	suite.Equal(false, body["ok"])
}

func (suite *GameServerTestSuite) TestErrorKindsMapToStatus() {
	suite.serviceMock.On("JoinTable", int64(4), "7", "nope").Return(nil, game.ErrWrongPassword).Once()
	suite.serviceMock.On("StartGame", int64(5), "7").Return(game.ErrTableNotFound).Once()
	suite.serviceMock.On("Stand", int64(4), "7").Return(game.ErrNotYourTurn).Once()
	suite.serviceMock.On("LeaveTable", int64(4), "7").Return(errors.New("disk on fire")).Once()

	status, body := suite.apiCall("POST", "/tables/4/join", "7", map[string]any{"password": "nope"})
	suite.Equal(http.StatusForbidden, status)
	suite.Equal("authorization", body["kind"])

	status, _ = suite.apiCall("POST", "/tables/5/start", "7", nil)
	suite.Equal(http.StatusNotFound, status)

	status, body = suite.apiCall("POST", "/tables/4/stand", "7", nil)
	suite.Equal(http.StatusBadRequest, status)
	suite.Equal("turn", body["kind"])

	status, body = suite.apiCall("POST", "/tables/4/leave", "7", nil)
	suite.Equal(http.StatusInternalServerError, status)
	suite.Equal("internal error", body["error"])
}

func (suite *GameServerTestSuite) TestTableCommands() {
	suite.serviceMock.On("JoinTable", int64(4), "7", "").Return(&db.Seat{ID: 1, TableID: 4, ParticipantID: "7", Chips: 100, Active: true}, nil).Once()
	suite.serviceMock.On("PlaceBet", int64(4), "7", int64(25)).Return(nil).Once()
	suite.serviceMock.On("Hit", int64(4), "7").Return(game.HitResult{Card: cards.Card{Rank: "K", Suit: "♥"}, Value: 20}, nil).Once()
	suite.serviceMock.On("Vote", int64(4), "7", game.VoteLeave).Return(nil).Once()
	suite.serviceMock.On("EndGame", int64(4), "7").Return(nil).Once()

	status, body := suite.apiCall("POST", "/tables/4/join", "7", nil)
	suite.Equal(http.StatusOK, status)
	suite.Equal(float64(100), body["chips"])

	status, _ = suite.apiCall("POST", "/tables/4/bet", "7", map[string]any{"amount": 25})
	suite.Equal(http.StatusOK, status)

	status, body = suite.apiCall("POST", "/tables/4/hit", "7", nil)
	suite.Equal(http.StatusOK, status)
	suite.Equal(map[string]any{"rank": "K", "suit": "♥"}, body["card"])
	suite.Equal(float64(20), body["value"])
	suite.Equal(false, body["busted"])

	status, body = suite.apiCall("POST", "/tables/4/continue", "7", map[string]any{"vote": "maybe"})
	suite.Equal(http.StatusBadRequest, status)
	suite.Equal("validation", body["kind"])
	status, _ = suite.apiCall("POST", "/tables/4/continue", "7", map[string]any{"vote": "leave"})
	suite.Equal(http.StatusOK, status)

	status, _ = suite.apiCall("POST", "/tables/4/end", "7", nil)
	suite.Equal(http.StatusOK, status)

	status, _ = suite.apiCall("POST", "/tables/4/bet", "7", nil)
	suite.Equal(http.StatusBadRequest, status, "a bet needs a body")
}

func (suite *GameServerTestSuite) TestListTables() {
	suite.serviceMock.On("ListTables").Return([]game.TableListing{{ID: 1, Name: "vip", PlayerCount: 2, HasPassword: true}}, nil).Once()
	status, body := suite.apiCall("GET", "/tables", "7", nil)
	suite.Equal(http.StatusOK, status)
	tables := body["tables"].([]any)
	suite.Require().Len(tables, 1)
	suite.Equal(true, tables[0].(map[string]any)["password"])
}

func (suite *GameServerTestSuite) TestSessionToken() {
	status, body := suite.apiCall("POST", "/session", "7", nil)
	suite.Equal(http.StatusOK, status)
	token, _ := body["token"].(string)
	suite.Require().NotEmpty(token)
	suite.Equal("7", body["userId"])

	suite.serviceMock.On("Me", "7").Return(&db.Account{ParticipantID: "7", Balance: 1000}, nil).Once()
	req, err := http.NewRequest("GET", suite.server.URL+HTTP_API_PREFIX+"/me", nil)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	respBody, err := ReadResponseBody(resp)
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(respBody), `"balance":1000`)
}

func (suite *GameServerTestSuite) TestStaticFallback() {
	resp, err := http.Get(suite.server.URL + "/app.js")
	suite.Require().NoError(err)
	body, err := ReadResponseBody(resp)
	suite.Require().NoError(err)
	suite.Equal("console.log(1)", string(body))

	resp, err = http.Get(suite.server.URL + "/tables/lobby")
	suite.Require().NoError(err)
	body, err = ReadResponseBody(resp)
	suite.Require().NoError(err)
	suite.Contains(string(body), "lobby")
}

func (suite *GameServerTestSuite) dial(query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	return conn
}

func (suite *GameServerTestSuite) TestWebsocketSession() {
	disconnected := make(chan struct{})
	suite.serviceMock.On("Connected", "5").Return()
	suite.serviceMock.On("PlaceBet", int64(3), "5", int64(5)).Return(game.ErrBetTooSmall).Once()
	suite.serviceMock.On("Disconnect", "5").Run(func(mock.Arguments) { close(disconnected) }).Return().Once()

	first := suite.dial("devUserId=5")
	suite.Require().NoError(first.WriteJSON(map[string]any{"type": "bet", "tableId": 3, "amount": 5}))
	ev := game.Event{}
	suite.Require().NoError(first.ReadJSON(&ev))
	suite.Equal(game.EventError, ev.Type)
	suite.Equal(game.ErrBetTooSmall.Error(), ev.Message)

	// A newer connection replaces the first without a disconnect.
	second := suite.dial("devUserId=5")
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	suite.Error(err, "replaced connection is closed")
	suite.Eventually(func() bool { return suite.connStore.Count() == 1 }, time.Second, 10*time.Millisecond)

	suite.connStore.SendToParticipant("5", game.Event{Type: game.EventNotify, Message: "hello"})
	suite.Require().NoError(second.ReadJSON(&ev))
	suite.Equal("hello", ev.Message)

	second.Close()
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		suite.Fail("disconnect was not reported")
	}
	suite.Equal(0, suite.connStore.Count())
}

func (suite *GameServerTestSuite) TestWebsocketRejectsAnonymous() {
	conn := suite.dial("")
	defer conn.Close()
	ev := game.Event{}
	suite.Require().NoError(conn.ReadJSON(&ev))
	suite.Equal(game.EventError, ev.Type)
	suite.Equal(0, suite.connStore.Count())
}
