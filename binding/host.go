package binding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	sdk "github.com/tarmac-project/d1sdk"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	sqlproto "github.com/tarmac-project/protobuf-go/sdk/sql"
	wapc "github.com/wapc/wapc-guest-tinygo"
	pb "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	capabilityName = "d1"
	fnAll          = "all"
	fnRun          = "run"

	hostStatusOK       = int32(200)
	hostStatusPartial  = int32(206)
	hostStatusBadInput = int32(400)
	hostStatusMissing  = int32(404)
	hostStatusError    = int32(500)
)

// HostCall defines the waPC host function signature used by binding operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Config controls how a HostDatabase interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for D1 operations.
	HostCall HostCall
}

// HostDatabase is a Database reached through the host's d1 capability.
type HostDatabase struct {
	runtime  sdk.RuntimeConfig
	hostCall HostCall
}

var _ Database = (*HostDatabase)(nil)

// New creates a host-backed Database.
func New(config Config) (*HostDatabase, error) {
	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &HostDatabase{runtime: config.SDKConfig.WithDefaults(), hostCall: hostCall}, nil
}

// Prepare creates a statement for query.
func (d *HostDatabase) Prepare(query string) Statement {
	return &hostStatement{db: d, query: query}
}

type hostStatement struct {
	db     *HostDatabase
	query  string
	params []any
}

func (s *hostStatement) Bind(values ...any) Statement {
	return &hostStatement{db: s.db, query: s.query, params: append([]any(nil), values...)}
}

func (s *hostStatement) All(ctx context.Context) (*AllResult, error) {
	respBytes, err := s.call(ctx, fnAll)
	if err != nil {
		return nil, err
	}

	var resp sqlproto.SQLQueryResponse
	if err := resp.UnmarshalVT(respBytes); err != nil {
		return nil, &CallError{Op: fnAll, Kind: sdk.ErrHostResponseInvalid, Err: fmt.Errorf("%w: %w", ErrUnmarshalResponse, err)}
	}

	embedded, err := embeddedError(fnAll, resp.GetStatus())
	if err != nil {
		return nil, err
	}
	if embedded != "" {
		return &AllResult{Results: []map[string]any{}, Error: embedded}, nil
	}

	rows, err := decodeRows(resp.GetData())
	if err != nil {
		return nil, &CallError{Op: fnAll, Kind: sdk.ErrHostResponseInvalid, Err: fmt.Errorf("%w: %w", ErrUnmarshalResponse, err)}
	}

	return &AllResult{Results: rows, Meta: Meta{RowsRead: int64(len(rows))}}, nil
}

func (s *hostStatement) Run(ctx context.Context) (*RunResult, error) {
	respBytes, err := s.call(ctx, fnRun)
	if err != nil {
		return nil, err
	}

	var resp sqlproto.SQLExecResponse
	if err := resp.UnmarshalVT(respBytes); err != nil {
		return nil, &CallError{Op: fnRun, Kind: sdk.ErrHostResponseInvalid, Err: fmt.Errorf("%w: %w", ErrUnmarshalResponse, err)}
	}

	embedded, err := embeddedError(fnRun, resp.GetStatus())
	if err != nil {
		return nil, err
	}
	if embedded != "" {
		return &RunResult{Error: embedded}, nil
	}

	changes := resp.GetRowsAffected()
	return &RunResult{Meta: Meta{
		Changes:     changes,
		LastRowID:   resp.GetLastInsertId(),
		RowsWritten: changes,
		ChangedDB:   changes > 0,
	}}, nil
}

// call encodes the statement and sends it to the host function fn.
func (s *hostStatement) call(ctx context.Context, fn string) ([]byte, error) {
	if strings.TrimSpace(s.query) == "" {
		return nil, &CallError{Op: fn, Kind: ErrInvalidQuery, Err: ErrInvalidQuery}
	}

	if err := ctx.Err(); err != nil {
		return nil, &CallError{Op: fn, Kind: sdk.ErrHostCall, Err: err}
	}

	payload, err := encodeStatement(s.query, s.params)
	if err != nil {
		return nil, &CallError{Op: fn, Kind: ErrMarshalRequest, Err: err}
	}

	respBytes, callErr := s.db.hostCall(s.db.runtime.Namespace, capabilityName, fn, payload)
	if callErr != nil {
		return nil, &CallError{Op: fn, Kind: sdk.ErrHostCall, Err: callErr}
	}

	return respBytes, nil
}

// Parameter type tags. Every parameter is sent as {"type": tag, "value": v}
// so the host binds it with its SQLite storage class intact.
const (
	paramNull    = "null"
	paramInteger = "integer"
	paramReal    = "real"
	paramText    = "text"
	paramBlob    = "blob"
	paramBoolean = "boolean"
)

// encodeStatement builds the request payload: a Struct with the query text
// and its tagged parameters in placeholder order.
func encodeStatement(query string, params []any) ([]byte, error) {
	values := make([]*structpb.Value, 0, len(params))
	for i, p := range params {
		v, err := encodeParameter(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		values = append(values, v)
	}

	st := &structpb.Struct{Fields: map[string]*structpb.Value{
		"query":      structpb.NewStringValue(query),
		"parameters": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
	return pb.Marshal(st)
}

// encodeParameter tags p with its storage class. Integers travel as decimal
// strings and blobs as base64 so neither is widened or reinterpreted.
func encodeParameter(p any) (*structpb.Value, error) {
	switch v := p.(type) {
	case nil:
		return tagged(paramNull, structpb.NewNullValue()), nil
	case bool:
		return tagged(paramBoolean, structpb.NewBoolValue(v)), nil
	case int:
		return integer(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return integer(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return integer(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return integer(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return integer(strconv.FormatInt(v, 10)), nil
	case uint:
		return unsigned(uint64(v))
	case uint8:
		return unsigned(uint64(v))
	case uint16:
		return unsigned(uint64(v))
	case uint32:
		return unsigned(uint64(v))
	case uint64:
		return unsigned(v)
	case float32:
		return tagged(paramReal, structpb.NewNumberValue(float64(v))), nil
	case float64:
		return tagged(paramReal, structpb.NewNumberValue(v)), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return integer(strconv.FormatInt(i, 10)), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return tagged(paramReal, structpb.NewNumberValue(f)), nil
	case string:
		return tagged(paramText, structpb.NewStringValue(v)), nil
	case []byte:
		return tagged(paramBlob, structpb.NewStringValue(base64.StdEncoding.EncodeToString(v))), nil
	case time.Time:
		return tagged(paramText, structpb.NewStringValue(v.UTC().Format(time.RFC3339Nano))), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", p)
	}
}

func tagged(tag string, value *structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"type":  structpb.NewStringValue(tag),
		"value": value,
	}})
}

func integer(decimal string) *structpb.Value {
	return tagged(paramInteger, structpb.NewStringValue(decimal))
}

// unsigned rejects values SQLite's signed 64-bit INTEGER cannot hold.
func unsigned(v uint64) (*structpb.Value, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", v)
	}
	return integer(strconv.FormatUint(v, 10)), nil
}

// embeddedError maps the host status onto D1's in-band error convention.
// Known failure codes become the result's Error; anything else means the
// response itself cannot be trusted.
func embeddedError(op string, status *sdkproto.Status) (string, error) {
	if status == nil {
		return "", &CallError{Op: op, Kind: sdk.ErrHostResponseInvalid, Err: errors.New("response carries no status")}
	}

	code := status.GetCode()
	switch code {
	case hostStatusOK, hostStatusPartial:
		return "", nil
	case hostStatusBadInput, hostStatusMissing, hostStatusError:
		if msg := status.GetStatus(); msg != "" {
			return msg, nil
		}
		return fmt.Sprintf("host status %d", code), nil
	default:
		return "", &CallError{Op: op, Kind: sdk.ErrHostResponseInvalid, Err: fmt.Errorf("unexpected host status code %d", code)}
	}
}

// decodeRows decodes the JSON row array returned by the host. Numbers are
// kept as json.Number so 64-bit integers survive.
func decodeRows(data []byte) ([]map[string]any, error) {
	rows := []map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}
