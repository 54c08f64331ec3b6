package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Bren2010/vrf/crypto/suites"
	"github.com/Bren2010/vrf/crypto/vrf"
	"github.com/Bren2010/vrf/db"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru"
)

const maxRequestSize = 1 << 20

var errMethodNotAllowed = errors.New("method not allowed")

type Handler struct {
	config *APIConfig
	tx     db.EvaluationStore
	cache  *lru.Cache
	ch     chan<- RecordRequest
}

func NewHandler(config *APIConfig, tx db.EvaluationStore, ch chan<- RecordRequest) (*Handler, error) {
	cache, err := lru.New(config.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Handler{config: config, tx: tx, cache: cache, ch: ch}, nil
}

// Router returns the routes of the API server.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/v1/meta", HandleAPI(h.Meta)).Methods(http.MethodGet)
	r.HandleFunc("/v1/prove", HandleAPI(h.Prove)).Methods(http.MethodPost)
	r.HandleFunc("/v1/verify", HandleAPI(h.Verify)).Methods(http.MethodPost)
	r.HandleFunc("/v1/proof-to-hash", HandleAPI(h.ProofToHash)).Methods(http.MethodPost)
	r.HandleFunc("/v1/evaluation/{output:[0-9a-f]+}", HandleAPI(h.Evaluation)).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = HandleAPI(func(*http.Request) (interface{}, error) {
		return nil, errMethodNotAllowed
	})
	return r
}

// HandleAPI wraps an API endpoint. The value returned by fn is encoded as
// JSON; errors are mapped to a status code and a JSON error message.
func HandleAPI(fn func(req *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		res, err := fn(req)
		status := http.StatusOK
		if err != nil {
			status = errorStatus(err)
			if status == http.StatusInternalServerError {
				log.Printf("%v: %v", path, err)
			}
			res = ErrorResponse{Error: err.Error()}
		}
		requestCtr.WithLabelValues(path, fmt.Sprint(status)).Inc()

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(status)
		if err := json.NewEncoder(rw).Encode(res); err != nil {
			log.Println(err)
		}
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, vrf.ErrMalformedInput), errors.Is(err, vrf.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest parses the JSON body of req into v.
func decodeRequest(req *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, req.Body, maxRequestSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: failed to parse request: %v", vrf.ErrMalformedInput, err)
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Home redirects requests to a pre-configured URL, like the API documentation.
func (h *Handler) Home(rw http.ResponseWriter, req *http.Request) {
	http.Redirect(rw, req, h.config.HomeRedirect, http.StatusSeeOther)
}

type MetaResponse struct {
	Suite       string `json:"suite"`
	PublicKey   []byte `json:"public_key"`
	ProofSize   int    `json:"proof_size"`
	OutputSize  int    `json:"output_size"`
	Evaluations uint64 `json:"evaluations"`
}

func (h *Handler) Meta(req *http.Request) (interface{}, error) {
	count, err := h.tx.Count()
	if err != nil {
		return nil, err
	}
	return MetaResponse{
		Suite:       h.config.suite.Name(),
		PublicKey:   h.config.vrfKey.PublicKey().Bytes(),
		ProofSize:   h.config.suite.ProofSize(),
		OutputSize:  h.config.suite.OutputSize(),
		Evaluations: count,
	}, nil
}

type ProveRequest struct {
	Message []byte `json:"message"`
}

type ProveResponse struct {
	Output []byte `json:"output"`
	Proof  []byte `json:"proof"`
}

// Prove evaluates the VRF on the requested message with the server's key, and
// records the evaluation before responding.
func (h *Handler) Prove(req *http.Request) (interface{}, error) {
	var pr ProveRequest
	if err := decodeRequest(req, &pr); err != nil {
		return nil, err
	}

	start := time.Now()
	output, proof := h.config.vrfKey.Prove(pr.Message)
	proveOps.Inc()
	proveDur.Observe(float64(time.Since(start).Microseconds()))

	e := &db.Evaluation{
		Suite:     h.config.suite.Name(),
		Message:   pr.Message,
		Output:    output,
		Proof:     proof,
		Timestamp: time.Now().UnixMilli(),
	}
	resp := make(chan error, 1)
	select {
	case h.ch <- RecordRequest{Evaluation: e, Resp: resp}:
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
	select {
	case err := <-resp:
		if err != nil {
			return nil, fmt.Errorf("failed to record evaluation: %w", err)
		}
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
	h.cache.Add(fmt.Sprintf("%x", output), e)

	return ProveResponse{Output: output, Proof: proof}, nil
}

type VerifyRequest struct {
	PublicKey []byte `json:"public_key,omitempty"`
	Message   []byte `json:"message"`
	Proof     []byte `json:"proof"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Output []byte `json:"output,omitempty"`
}

// Verify checks a proof against the given public key, or the server's public
// key if none or an empty one is given.
func (h *Handler) Verify(req *http.Request) (interface{}, error) {
	var vr VerifyRequest
	if err := decodeRequest(req, &vr); err != nil {
		return nil, err
	}
	pk := vr.PublicKey
	if len(pk) == 0 {
		pk = h.config.vrfKey.PublicKey().Bytes()
	}

	output, valid, err := suites.ProofToOutput(h.config.suite, pk, vr.Message, vr.Proof)
	if err != nil {
		verifyOps.WithLabelValues("malformed").Inc()
		return nil, err
	}
	verifyOps.WithLabelValues(fmt.Sprint(valid)).Inc()

	return VerifyResponse{Valid: valid, Output: output}, nil
}

type ProofToHashRequest struct {
	Proof []byte `json:"proof"`
}

type ProofToHashResponse struct {
	Output []byte `json:"output"`
}

// ProofToHash returns the output contained in a proof, without verifying it.
func (h *Handler) ProofToHash(req *http.Request) (interface{}, error) {
	var pr ProofToHashRequest
	if err := decodeRequest(req, &pr); err != nil {
		return nil, err
	}
	output, err := suites.ProofToHash(h.config.suite, pr.Proof)
	if err != nil {
		return nil, err
	}
	return ProofToHashResponse{Output: output}, nil
}

// Evaluation returns a previously recorded evaluation by its output.
func (h *Handler) Evaluation(req *http.Request) (interface{}, error) {
	key := mux.Vars(req)["output"]
	output, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vrf.ErrMalformedInput, err)
	} else if len(output) != h.config.suite.OutputSize() {
		return nil, fmt.Errorf("%w: output is %d bytes, want %d", vrf.ErrMalformedInput, len(output), h.config.suite.OutputSize())
	}

	if e, ok := h.cache.Get(key); ok {
		return e, nil
	}
	e, err := h.tx.Get(output)
	if err != nil {
		return nil, err
	}
	h.cache.Add(key, e)
	return e, nil
}
