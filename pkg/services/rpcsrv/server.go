package rpcsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/lobsterdao/mintreveal/pkg/rpcapi"
	"github.com/lobsterdao/mintreveal/pkg/services/rpcsrv/params"
	"go.uber.org/zap"
)

type (
	// Ledger abstracts away the claim engine as used by the RPC server.
	Ledger interface {
		AttributeOf(unitID uint64) (uint64, error)
		BalanceOf(owner common.Address) (uint64, error)
		Claim(recipient common.Address, maxCount, requested uint64, proof []common.Hash) ([]uint64, error)
		ClaimByCollection(caller, collection common.Address, ids []*uint256.Int) ([]uint64, error)
		ClaimedCount(recipient common.Address) (uint64, error)
		Collections() ([]state.Quota, error)
		FulfillRandomness(caller common.Address, requestID common.Hash, value *uint256.Int) error
		IsClaimedByToken(collection common.Address, id *uint256.Int) (bool, error)
		LockRoot(caller common.Address) error
		OwnerOf(unitID uint64) (common.Address, error)
		RemainingQuota(collection common.Address) (uint64, error)
		RequestSeed(caller common.Address) (common.Hash, error)
		Root() (common.Hash, error)
		RootLocked() (bool, error)
		SeedState() (*state.Seed, error)
		SetBaseURI(caller common.Address, uri string, final bool) error
		SetDefaultURI(caller common.Address, uri string) error
		Supply() (*state.Supply, error)
		TokenURI(unitID uint64) (string, error)
		UpdateRoot(caller common.Address, root common.Hash) error
		VerifyClaim(recipient common.Address, maxCount uint64, proof []common.Hash) (bool, error)
	}

	// Server represents the JSON-RPC 2.0 server.
	Server struct {
		http    []*http.Server
		ledger  Ledger
		config  config.RPC
		log     *zap.Logger
		started atomic.Bool
		errChan chan<- error
	}
)

// requestIDHeader carries the id the request is logged with.
const requestIDHeader = "X-Request-Id"

var rpcHandlers = map[string]func(*Server, params.Params) (any, *rpcapi.Error){
	"claim":             (*Server).claim,
	"claimbycollection": (*Server).claimByCollection,
	"fulfillrandomness": (*Server).fulfillRandomness,
	"getattribute":      (*Server).getAttribute,
	"getbalance":        (*Server).getBalance,
	"getclaimedcount":   (*Server).getClaimedCount,
	"getcollections":    (*Server).getCollections,
	"getownerof":        (*Server).getOwnerOf,
	"getremainingquota": (*Server).getRemainingQuota,
	"getroot":           (*Server).getRoot,
	"getseedstate":      (*Server).getSeedState,
	"getsupply":         (*Server).getSupply,
	"gettokenuri":       (*Server).getTokenURI,
	"isclaimedbytoken":  (*Server).isClaimedByToken,
	"lockroot":          (*Server).lockRoot,
	"requestseed":       (*Server).requestSeed,
	"setbaseuri":        (*Server).setBaseURI,
	"setdefaulturi":     (*Server).setDefaultURI,
	"updateroot":        (*Server).updateRoot,
	"verifyclaim":       (*Server).verifyClaim,
}

// New creates a new Server struct. Errors of the running server are sent to
// errChan.
func New(ledger Ledger, conf config.RPC, log *zap.Logger, errChan chan<- error) *Server {
	s := &Server{
		ledger:  ledger,
		config:  conf,
		log:     log,
		errChan: errChan,
	}
	for _, addr := range conf.GetAddresses() {
		s.http = append(s.http, &http.Server{
			Addr:              addr,
			Handler:           s,
			MaxHeaderBytes:    conf.MaxRequestHeaderBytes,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}
	return s
}

// Name returns service name.
func (s *Server) Name() string {
	return "rpc"
}

// Start creates a new JSON-RPC server listening on the configured addresses.
// It returns immediately, serving errors are sent to errChan. The Server
// only starts once, subsequent calls to Start are no-op.
func (s *Server) Start() {
	if !s.config.Enabled {
		s.log.Info("RPC server is not enabled")
		return
	}
	if !s.started.CompareAndSwap(false, true) {
		s.log.Info("RPC server already started")
		return
	}
	for _, srv := range s.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			s.errChan <- fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			return
		}
		srv.Addr = ln.Addr().String() // set Addr to the actual address
		s.log.Info("starting rpc-server", zap.String("endpoint", srv.Addr))
		go func(srv *http.Server) {
			err := srv.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("failed to start RPC server", zap.Error(err))
				s.errChan <- err
			}
		}(srv)
	}
}

// Addresses returns the actual addresses the server listens on.
func (s *Server) Addresses() []string {
	res := make([]string, len(s.http))
	for i, srv := range s.http {
		res[i] = srv.Addr
	}
	return res
}

// Shutdown stops the RPC server if it's running.
func (s *Server) Shutdown() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	for _, srv := range s.http {
		s.log.Info("shutting down RPC server", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			s.log.Warn("error during RPC server shutdown", zap.Error(err))
		}
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, httpRequest *http.Request) {
	reqID := uuid.New()
	w.Header().Set(requestIDHeader, reqID.String())
	log := s.log.With(zap.Stringer("request", reqID))

	if httpRequest.Method == http.MethodOptions && s.config.EnableCORSWorkaround { // Preflight CORS.
		setCORSOriginHeaders(w.Header())
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Max-Age", "21600") // 6 hours.
		return
	}
	if httpRequest.Method != http.MethodPost {
		s.writeHTTPErrorResponse(log, params.NewIn(), w,
			rpcapi.NewInvalidParamsError(fmt.Sprintf("invalid method '%s', please retry with 'POST'", httpRequest.Method)))
		return
	}

	req := params.NewRequest()
	body := http.MaxBytesReader(w, httpRequest.Body, int64(s.config.MaxRequestBodyBytes))
	err := req.DecodeData(body)
	if err != nil {
		s.writeHTTPErrorResponse(log, params.NewIn(), w, rpcapi.NewParseError(err.Error()))
		return
	}

	resp := s.handleRequest(log, req)
	s.writeHTTPServerResponse(log, req, w, resp)
}

func (s *Server) handleRequest(log *zap.Logger, req *params.Request) abstractResult {
	if req.In != nil {
		req.In.Method = escapeForLog(req.In.Method) // No valid method name will be changed by it.
		return s.handleIn(log, req.In)
	}
	resp := make(abstractBatch, len(req.Batch))
	for i, in := range req.Batch {
		in.Method = escapeForLog(in.Method) // No valid method name will be changed by it.
		resp[i] = s.handleIn(log, &in)
	}
	return resp
}

func (s *Server) handleIn(log *zap.Logger, req *params.In) abstract {
	var res any
	var resErr *rpcapi.Error
	if req.JSONRPC != rpcapi.JSONRPCVersion {
		return s.packResponse(req, nil, rpcapi.NewInvalidParamsError(fmt.Sprintf("problem parsing JSON: invalid version, expected 2.0 got '%s'", req.JSONRPC)))
	}

	reqParams := params.Params(req.RawParams)

	log.Debug("processing rpc request",
		zap.String("method", req.Method),
		zap.Stringer("params", reqParams))

	start := time.Now()
	defer func() { addReqTimeMetric(req.Method, time.Since(start)) }()

	resErr = rpcapi.NewMethodNotFoundError(fmt.Sprintf("method %q not supported", req.Method))
	handler, ok := rpcHandlers[req.Method]
	if ok {
		res, resErr = handler(s, reqParams)
	}
	return s.packResponse(req, res, resErr)
}

func (s *Server) packResponse(r *params.In, result any, respErr *rpcapi.Error) abstract {
	resp := abstract{
		Header: rpcapi.Header{
			JSONRPC: r.JSONRPC,
			ID:      r.RawID,
		},
	}
	if respErr != nil {
		resp.Error = respErr
	} else {
		resp.Result = result
	}
	return resp
}

func (s *Server) writeHTTPErrorResponse(log *zap.Logger, r *params.In, w http.ResponseWriter, jsonErr *rpcapi.Error) {
	resp := s.packResponse(r, nil, jsonErr)
	s.writeHTTPServerResponse(log, &params.Request{In: r}, w, resp)
}

func (s *Server) writeHTTPServerResponse(log *zap.Logger, r *params.Request, w http.ResponseWriter, resp abstractResult) {
	// Errors can happen in many places and we can only catch ALL of them here.
	resp.RunForErrors(func(jsonErr *rpcapi.Error) {
		logRequestError(log, r, jsonErr)
	})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if s.config.EnableCORSWorkaround {
		setCORSOriginHeaders(w.Header())
	}
	if r.In != nil {
		resp := resp.(abstract)
		if resp.Error != nil {
			w.WriteHeader(getHTTPCodeForError(resp.Error))
		}
	}

	encoder := json.NewEncoder(w)
	err := encoder.Encode(resp)
	if err != nil {
		switch {
		case r.In != nil:
			log.Error("Error encountered while encoding response",
				zap.String("err", err.Error()),
				zap.String("method", r.In.Method))
		case r.Batch != nil:
			log.Error("Error encountered while encoding batch response",
				zap.String("err", err.Error()))
		}
	}
}

func logRequestError(log *zap.Logger, r *params.Request, jsonErr *rpcapi.Error) {
	logFields := []zap.Field{
		zap.Int64("code", jsonErr.Code),
	}
	if len(jsonErr.Data) != 0 {
		logFields = append(logFields, zap.String("cause", jsonErr.Data))
	}
	if r.In != nil {
		logFields = append(logFields, zap.String("method", r.In.Method))
	}

	logText := "Error encountered with rpc request"
	switch jsonErr.Code {
	case rpcapi.InternalServerErrorCode:
		log.Error(logText, logFields...)
	default:
		log.Info(logText, logFields...)
	}
}

func setCORSOriginHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Access-Control-Allow-Headers, Authorization, X-Requested-With")
}

// escapeForLog removes non-printable characters from the string.
func escapeForLog(in string) string {
	return strings.Map(func(c rune) rune {
		if !strconv.IsGraphic(c) {
			return -1
		}
		return c
	}, in)
}
