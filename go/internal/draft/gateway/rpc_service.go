package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/settings"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// DraftServiceName is the fully-qualified name of the command RPC service
const DraftServiceName = "auction.v1.DraftService"

// Procedure paths of the command RPC service
const (
	AddCaptainProcedure     = "/" + DraftServiceName + "/AddCaptain"
	UpdateSettingsProcedure = "/" + DraftServiceName + "/UpdateSettings"
	StartProcedure          = "/" + DraftServiceName + "/Start"
	NominateProcedure       = "/" + DraftServiceName + "/Nominate"
	BidProcedure            = "/" + DraftServiceName + "/Bid"
)

// JSONCodec carries plain Go request and response structs over Connect.
// Protobuf messages such as emptypb.Empty go through protojson.
type JSONCodec struct{}

// Name implements connect.Codec
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec
func (JSONCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// SettingsReply is the UpdateSettings response
type SettingsReply = SettingsResponse

// RPCService serves the draft commands as a Connect service next to the
// JSON routes. Both call the same CommandProvider.
type RPCService struct {
	commands CommandProvider
	auth     *Authenticator

	// OnStart runs after a successful Start
	OnStart func()
}

func NewRPCService(commands CommandProvider, auth *Authenticator) *RPCService {
	return &RPCService{commands: commands, auth: auth}
}

// Handler returns the mount path and handler of the service
func (s *RPCService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AddCaptainProcedure, connect.NewUnaryHandler(AddCaptainProcedure, s.AddCaptain, opts...))
	mux.Handle(UpdateSettingsProcedure, connect.NewUnaryHandler(UpdateSettingsProcedure, s.UpdateSettings, opts...))
	mux.Handle(StartProcedure, connect.NewUnaryHandler(StartProcedure, s.Start, opts...))
	mux.Handle(NominateProcedure, connect.NewUnaryHandler(NominateProcedure, s.Nominate, opts...))
	mux.Handle(BidProcedure, connect.NewUnaryHandler(BidProcedure, s.Bid, opts...))
	return "/" + DraftServiceName + "/", mux
}

// AddCaptain registers a captain
func (s *RPCService) AddCaptain(ctx context.Context, req *connect.Request[AddCaptainRequest]) (*connect.Response[draft.CaptainView], error) {
	userID := strings.TrimSpace(req.Msg.UserID)
	name := strings.TrimSpace(req.Msg.Name)
	if userID == "" || name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id and name are required"))
	}

	view, err := s.commands.AddCaptain(userID, name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&view), nil
}

// UpdateSettings applies a partial settings update
func (s *RPCService) UpdateSettings(ctx context.Context, req *connect.Request[settings.UpdateRequest]) (*connect.Response[SettingsReply], error) {
	if req.Msg.Empty() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("no settings to update"))
	}

	updated, warnings, err := s.commands.UpdateSettings(*req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SettingsReply{
		Settings:  updated,
		Formatted: settings.Format(updated),
		Warnings:  warnings,
	}), nil
}

// Start opens round 1
func (s *RPCService) Start(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	if err := s.commands.Start(); err != nil {
		return nil, toConnectError(err)
	}
	if s.OnStart != nil {
		s.OnStart()
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// Nominate puts a player up for bidding on behalf of the caller
func (s *RPCService) Nominate(ctx context.Context, req *connect.Request[PickRequest]) (*connect.Response[draft.RoundSummary], error) {
	userID, err := s.auth.IdentifyHeader(req.Header())
	if err != nil {
		return nil, toConnectError(err)
	}
	if strings.TrimSpace(req.Msg.Player) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player is required"))
	}

	summary, err := s.commands.Nominate(userID, req.Msg.Player, req.Msg.StartingBid)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("player", req.Msg.Player).Msg("pick rejected")
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&summary), nil
}

// Bid raises the current bid on behalf of the caller
func (s *RPCService) Bid(ctx context.Context, req *connect.Request[BidRequest]) (*connect.Response[draft.RoundSummary], error) {
	userID, err := s.auth.IdentifyHeader(req.Header())
	if err != nil {
		return nil, toConnectError(err)
	}

	summary, err := s.commands.Bid(userID, req.Msg.Amount)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Int("amount", req.Msg.Amount).Msg("bid rejected")
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&summary), nil
}

// toConnectError maps a draft error onto a Connect code. The JSON error body
// travels as a structpb detail so clients keep the code and bid bounds.
func toConnectError(err error) *connect.Error {
	status, resp := toErrorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("rpc failed")
	}

	connectErr := connect.NewError(connectCode(status), errors.New(resp.Message))
	fields := map[string]any{"code": resp.Code}
	if resp.MaxBid != nil {
		fields["max_bid"] = *resp.MaxBid
	}
	if resp.MinBid != nil {
		fields["min_bid"] = *resp.MinBid
	}
	body, err := structpb.NewStruct(fields)
	if err != nil {
		return connectErr
	}
	if detail, err := connect.NewErrorDetail(body); err == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

func connectCode(status int) connect.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return connect.CodeInvalidArgument
	case http.StatusUnauthorized:
		return connect.CodeUnauthenticated
	case http.StatusPaymentRequired:
		return connect.CodeResourceExhausted
	case http.StatusForbidden:
		return connect.CodePermissionDenied
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}

// ErrorCode extracts the draft error code carried by a Connect error
func ErrorCode(err error) string {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return ""
	}
	for _, detail := range connectErr.Details() {
		msg, err := detail.Value()
		if err != nil {
			continue
		}
		if body, ok := msg.(*structpb.Struct); ok {
			return body.GetFields()["code"].GetStringValue()
		}
	}
	return ""
}
