package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/settings"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type rpcClients struct {
	addCaptain *connect.Client[AddCaptainRequest, draft.CaptainView]
	update     *connect.Client[settings.UpdateRequest, SettingsReply]
	start      *connect.Client[emptypb.Empty, emptypb.Empty]
	nominate   *connect.Client[PickRequest, draft.RoundSummary]
	bid        *connect.Client[BidRequest, draft.RoundSummary]
}

func newRPCClients(srv *httptest.Server) rpcClients {
	opt := connect.WithCodec(JSONCodec{})
	return rpcClients{
		addCaptain: connect.NewClient[AddCaptainRequest, draft.CaptainView](srv.Client(), srv.URL+AddCaptainProcedure, opt),
		update:     connect.NewClient[settings.UpdateRequest, SettingsReply](srv.Client(), srv.URL+UpdateSettingsProcedure, opt),
		start:      connect.NewClient[emptypb.Empty, emptypb.Empty](srv.Client(), srv.URL+StartProcedure, opt),
		nominate:   connect.NewClient[PickRequest, draft.RoundSummary](srv.Client(), srv.URL+NominateProcedure, opt),
		bid:        connect.NewClient[BidRequest, draft.RoundSummary](srv.Client(), srv.URL+BidProcedure, opt),
	}
}

func asUser[T any](msg *T, userID string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(UserIDHeader, userID)
	}
	return req
}

func expectRPCError(t *testing.T, err error, code connect.Code, draftCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("call succeeded, want %s", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("code = %s, want %s: %v", got, code, err)
	}
	if got := ErrorCode(err); got != draftCode {
		t.Fatalf("draft code = %q, want %q", got, draftCode)
	}
}

func TestRPCDraftFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	srv := httptest.NewServer(ts.mux)
	defer srv.Close()
	rpc := newRPCClients(srv)
	ctx := context.Background()

	_, err := rpc.start.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	expectRPCError(t, err, connect.CodeFailedPrecondition, "INVALID_PRECONDITIONS")

	for id, name := range map[string]string{"u1": "Alice", "u2": "Bob"} {
		res, err := rpc.addCaptain.CallUnary(ctx, connect.NewRequest(&AddCaptainRequest{UserID: id, Name: name}))
		if err != nil {
			t.Fatalf("AddCaptain(%s) error = %v", name, err)
		}
		if res.Msg.Name != name || res.Msg.Balance != 200 {
			t.Fatalf("captain = %+v", res.Msg)
		}
	}
	_, err = rpc.addCaptain.CallUnary(ctx, connect.NewRequest(&AddCaptainRequest{UserID: "u1", Name: "Again"}))
	expectRPCError(t, err, connect.CodeFailedPrecondition, "DUPLICATE_CAPTAIN")

	_, err = rpc.update.CallUnary(ctx, connect.NewRequest(&settings.UpdateRequest{}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("empty update error = %v, want invalid_argument", err)
	}
	updated, err := rpc.update.CallUnary(ctx, connect.NewRequest(&settings.UpdateRequest{RoundTimeSec: intPtr(25)}))
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if updated.Msg.Settings.RoundTimeSec != 25 || updated.Msg.Formatted == "" {
		t.Fatalf("settings = %+v", updated.Msg)
	}

	if _, err := rpc.start.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if ts.started != 1 {
		t.Fatalf("OnStart ran %d times, want 1", ts.started)
	}
	nominator, other := ts.nominator(t)

	_, err = rpc.nominate.CallUnary(ctx, asUser(&PickRequest{Player: "Alpha"}, ""))
	expectRPCError(t, err, connect.CodeUnauthenticated, "UNAUTHENTICATED")

	_, err = rpc.nominate.CallUnary(ctx, asUser(&PickRequest{Player: "Alpha"}, other))
	expectRPCError(t, err, connect.CodePermissionDenied, "NOT_YOUR_TURN")

	summary, err := rpc.nominate.CallUnary(ctx, asUser(&PickRequest{Player: "Alpha", StartingBid: intPtr(15)}, nominator))
	if err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if summary.Msg.Phase != models.DraftPhaseBidding || summary.Msg.CurrentBid != 15 {
		t.Fatalf("summary = %+v", summary.Msg)
	}

	_, err = rpc.bid.CallUnary(ctx, asUser(&BidRequest{Amount: 15}, other))
	expectRPCError(t, err, connect.CodeInvalidArgument, "BID_TOO_LOW")

	summary, err = rpc.bid.CallUnary(ctx, asUser(&BidRequest{Amount: 40}, other))
	if err != nil {
		t.Fatalf("Bid() error = %v", err)
	}
	if summary.Msg.CurrentBid != 40 || summary.Msg.Leader == summary.Msg.Nominator {
		t.Fatalf("summary after bid = %+v", summary.Msg)
	}
}

func TestRPCErrorCarriesBidBounds(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.register(t)
	ts.do(t, http.MethodPost, "/api/draft/start", "", "")
	srv := httptest.NewServer(ts.mux)
	defer srv.Close()
	rpc := newRPCClients(srv)
	nominator, other := ts.nominator(t)
	ctx := context.Background()

	if _, err := rpc.nominate.CallUnary(ctx, asUser(&PickRequest{Player: "Bravo"}, nominator)); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	_, err := rpc.bid.CallUnary(ctx, asUser(&BidRequest{Amount: 500}, other))
	expectRPCError(t, err, connect.CodeResourceExhausted, "INSUFFICIENT_FUNDS")

	connectErr := err.(*connect.Error)
	var maxBid float64
	for _, detail := range connectErr.Details() {
		msg, err := detail.Value()
		if err != nil {
			t.Fatalf("detail.Value() error = %v", err)
		}
		if body, ok := msg.(*structpb.Struct); ok {
			maxBid = body.GetFields()["max_bid"].GetNumberValue()
		}
	}
	if maxBid != 180 {
		t.Fatalf("max_bid detail = %v, want 180", maxBid)
	}
}

func TestConnectCode(t *testing.T) {
	tests := []struct {
		status int
		want   connect.Code
	}{
		{http.StatusBadRequest, connect.CodeInvalidArgument},
		{http.StatusUnprocessableEntity, connect.CodeInvalidArgument},
		{http.StatusUnauthorized, connect.CodeUnauthenticated},
		{http.StatusPaymentRequired, connect.CodeResourceExhausted},
		{http.StatusForbidden, connect.CodePermissionDenied},
		{http.StatusNotFound, connect.CodeNotFound},
		{http.StatusConflict, connect.CodeFailedPrecondition},
		{http.StatusPreconditionFailed, connect.CodeFailedPrecondition},
		{http.StatusInternalServerError, connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connectCode(tt.status); got != tt.want {
			t.Errorf("connectCode(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func intPtr(v int) *int { return &v }
