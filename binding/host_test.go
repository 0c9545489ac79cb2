package binding

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"testing"
	"time"

	sdk "github.com/tarmac-project/d1sdk"
	"github.com/tarmac-project/d1sdk/hostmock"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	sqlproto "github.com/tarmac-project/protobuf-go/sdk/sql"
	pb "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func decodeRequest(payload []byte) (string, []any, error) {
	var st structpb.Struct
	if err := pb.Unmarshal(payload, &st); err != nil {
		return "", nil, err
	}
	fields := st.GetFields()

	var params []any
	for i, v := range fields["parameters"].GetListValue().GetValues() {
		p, err := decodeParameter(v)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		params = append(params, p)
	}
	return fields["query"].GetStringValue(), params, nil
}

// decodeParameter reverses the tagging done by encodeParameter.
func decodeParameter(v *structpb.Value) (any, error) {
	fields := v.GetStructValue().GetFields()
	value := fields["value"]

	switch tag := fields["type"].GetStringValue(); tag {
	case paramNull:
		return nil, nil
	case paramInteger:
		return strconv.ParseInt(value.GetStringValue(), 10, 64)
	case paramReal:
		return value.GetNumberValue(), nil
	case paramText:
		return value.GetStringValue(), nil
	case paramBlob:
		return base64.StdEncoding.DecodeString(value.GetStringValue())
	case paramBoolean:
		return value.GetBoolValue(), nil
	default:
		return nil, fmt.Errorf("unknown parameter type %q", tag)
	}
}

func expectRequest(query string, params []any) func([]byte) error {
	return func(payload []byte) error {
		gotQuery, gotParams, err := decodeRequest(payload)
		if err != nil {
			return err
		}
		if gotQuery != query {
			return fmt.Errorf("query mismatch: want %q got %q", query, gotQuery)
		}
		if !reflect.DeepEqual(gotParams, params) {
			return fmt.Errorf("parameter mismatch: want %v got %v", params, gotParams)
		}
		return nil
	}
}

func queryResponse(status *sdkproto.Status, data string) func() []byte {
	return func() []byte {
		b, _ := (&sqlproto.SQLQueryResponse{Status: status, Data: []byte(data)}).MarshalVT()
		return b
	}
}

func execResponse(status *sdkproto.Status, changes, lastID int64) func() []byte {
	return func() []byte {
		b, _ := (&sqlproto.SQLExecResponse{Status: status, RowsAffected: changes, LastInsertId: lastID}).MarshalVT()
		return b
	}
}

func newHostDB(t *testing.T, routes map[string]hostmock.Route) *HostDatabase {
	t.Helper()

	mock, err := hostmock.New(hostmock.Config{
		ExpectedNamespace:  "tarmac",
		ExpectedCapability: capabilityName,
		Routes:             routes,
	})
	if err != nil {
		t.Fatalf("hostmock: %v", err)
	}

	db, err := New(Config{HostCall: mock.HostCall})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return db
}

func TestNew_DefaultNamespace(t *testing.T) {
	t.Parallel()

	db, err := New(Config{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if db.runtime.Namespace != sdk.DefaultNamespace {
		t.Fatalf("namespace mismatch: want %q got %q", sdk.DefaultNamespace, db.runtime.Namespace)
	}
	if db.hostCall == nil {
		t.Fatalf("expected default host call")
	}
}

func TestAll_HappyPath(t *testing.T) {
	t.Parallel()

	query := "SELECT * FROM users WHERE id = ?"
	db := newHostDB(t, map[string]hostmock.Route{
		fnAll: {
			PayloadValidator: expectRequest(query, []any{int64(1)}),
			Response:         queryResponse(&sdkproto.Status{Status: "OK", Code: 200}, `[{"id":1,"name":"Ada"}]`),
		},
	})

	res, err := db.Prepare(query).Bind(1).All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}

	want := []map[string]any{{"id": json.Number("1"), "name": "Ada"}}
	if !reflect.DeepEqual(res.Results, want) {
		t.Fatalf("rows mismatch: want %v got %v", want, res.Results)
	}
	if res.Error != "" {
		t.Fatalf("unexpected embedded error %q", res.Error)
	}
}

func TestAll_EmptyData(t *testing.T) {
	t.Parallel()

	db := newHostDB(t, map[string]hostmock.Route{
		fnAll: {Response: queryResponse(&sdkproto.Status{Status: "OK", Code: 200}, "")},
	})

	res, err := db.Prepare("SELECT 1 WHERE 0").All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if res.Results == nil || len(res.Results) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", res.Results)
	}
}

func TestRun_HappyPath(t *testing.T) {
	t.Parallel()

	query := "INSERT INTO users (name, created_at) VALUES (?, ?)"
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db := newHostDB(t, map[string]hostmock.Route{
		fnRun: {
			PayloadValidator: expectRequest(query, []any{"Ada", "2024-03-01T12:00:00Z"}),
			Response:         execResponse(&sdkproto.Status{Status: "OK", Code: 200}, 1, 42),
		},
	})

	res, err := db.Prepare(query).Bind("Ada", created).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Meta.Changes != 1 || res.Meta.LastRowID != 42 || !res.Meta.ChangedDB {
		t.Fatalf("unexpected meta: %+v", res.Meta)
	}
}

func TestParametersKeepStorageClass(t *testing.T) {
	t.Parallel()

	query := "UPDATE files SET body = ?, note = ?, flag = ?, ratio = ? WHERE id = ? AND owner = ? AND rev = ? AND name = ?"
	params := []any{
		[]byte{0, 1},
		nil,
		true,
		1.5,
		int64(9007199254740993),
		uint32(7),
		json.Number("12"),
		"report.pdf",
	}
	want := []any{
		[]byte{0, 1},
		nil,
		true,
		1.5,
		int64(9007199254740993),
		int64(7),
		int64(12),
		"report.pdf",
	}

	db := newHostDB(t, map[string]hostmock.Route{
		fnRun: {
			PayloadValidator: expectRequest(query, want),
			Response:         execResponse(&sdkproto.Status{Status: "OK", Code: 200}, 1, 0),
		},
	})

	if _, err := db.Prepare(query).Bind(params...).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	payload, err := encodeStatement(query, []any{int64(9007199254740993), []byte{0, 1}})
	if err != nil {
		t.Fatalf("encodeStatement returned error: %v", err)
	}
	var st structpb.Struct
	if err := pb.Unmarshal(payload, &st); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	raw := st.GetFields()["parameters"].GetListValue().GetValues()

	tt := []struct {
		tag   string
		value string
	}{
		{tag: paramInteger, value: "9007199254740993"},
		{tag: paramBlob, value: "AAE="},
	}
	for i, tc := range tt {
		fields := raw[i].GetStructValue().GetFields()
		if got := fields["type"].GetStringValue(); got != tc.tag {
			t.Fatalf("parameter %d tag: want %q got %q", i+1, tc.tag, got)
		}
		if got := fields["value"].GetStringValue(); got != tc.value {
			t.Fatalf("parameter %d value: want %q got %q", i+1, tc.value, got)
		}
	}
}

func TestBindCopies(t *testing.T) {
	t.Parallel()

	stmt := (&HostDatabase{}).Prepare("SELECT ?")
	a := stmt.Bind(1).(*hostStatement)
	b := stmt.Bind(2).(*hostStatement)
	if a.params[0] != 1 || b.params[0] != 2 {
		t.Fatalf("expected independent bindings, got %v and %v", a.params, b.params)
	}
	if len(stmt.(*hostStatement).params) != 0 {
		t.Fatalf("expected original statement to stay unbound")
	}
}

func TestEmbeddedErrors(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		status *sdkproto.Status
		want   string
	}{
		{"bad input", &sdkproto.Status{Status: "UNIQUE constraint failed: users.email", Code: 400}, "UNIQUE constraint failed: users.email"},
		{"missing", &sdkproto.Status{Status: "no such table: users", Code: 404}, "no such table: users"},
		{"server error without message", &sdkproto.Status{Code: 500}, "host status 500"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db := newHostDB(t, map[string]hostmock.Route{
				fnAll: {Response: queryResponse(tc.status, "")},
				fnRun: {Response: execResponse(tc.status, 0, 0)},
			})

			all, err := db.Prepare("SELECT 1").All(context.Background())
			if err != nil {
				t.Fatalf("All returned error: %v", err)
			}
			if all.Error != tc.want {
				t.Fatalf("All embedded error: want %q got %q", tc.want, all.Error)
			}

			run, err := db.Prepare("DELETE FROM users").Run(context.Background())
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if run.Error != tc.want {
				t.Fatalf("Run embedded error: want %q got %q", tc.want, run.Error)
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	t.Parallel()

	hostErr := errors.New("D1_ERROR: database is locked")

	tt := []struct {
		name      string
		query     string
		params    []any
		ctx       func() context.Context
		route     hostmock.Route
		wantKind  error
		wantCause error
	}{
		{
			name:      "host failure",
			query:     "SELECT 1",
			route:     hostmock.Route{Fail: true, Error: hostErr},
			wantKind:  sdk.ErrHostCall,
			wantCause: hostErr,
		},
		{
			name:     "empty query",
			query:    "   ",
			wantKind: ErrInvalidQuery,
		},
		{
			name:     "unsupported parameter",
			query:    "SELECT ?",
			params:   []any{struct{}{}},
			wantKind: ErrMarshalRequest,
		},
		{
			name:     "unsigned overflow",
			query:    "SELECT ?",
			params:   []any{uint64(math.MaxInt64) + 1},
			wantKind: ErrMarshalRequest,
		},
		{
			name:     "garbage response",
			query:    "SELECT 1",
			route:    hostmock.Route{Response: func() []byte { return []byte{0xff, 0xff, 0xff} }},
			wantKind: sdk.ErrHostResponseInvalid,
		},
		{
			name:     "missing status",
			query:    "SELECT 1",
			route:    hostmock.Route{Response: queryResponse(nil, "[]")},
			wantKind: sdk.ErrHostResponseInvalid,
		},
		{
			name:     "unexpected status",
			query:    "SELECT 1",
			route:    hostmock.Route{Response: queryResponse(&sdkproto.Status{Code: 302}, "[]")},
			wantKind: sdk.ErrHostResponseInvalid,
		},
		{
			name:     "invalid rows",
			query:    "SELECT 1",
			route:    hostmock.Route{Response: queryResponse(&sdkproto.Status{Code: 200}, "{not json")},
			wantKind: sdk.ErrHostResponseInvalid,
		},
		{
			name:  "cancelled context",
			query: "SELECT 1",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantKind:  sdk.ErrHostCall,
			wantCause: context.Canceled,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db := newHostDB(t, map[string]hostmock.Route{fnAll: tc.route})

			ctx := context.Background()
			if tc.ctx != nil {
				ctx = tc.ctx()
			}

			_, err := db.Prepare(tc.query).Bind(tc.params...).All(ctx)
			if !errors.Is(err, tc.wantKind) {
				t.Fatalf("unexpected error kind: want %v got %v", tc.wantKind, err)
			}

			var callErr *CallError
			if !errors.As(err, &callErr) {
				t.Fatalf("expected *CallError, got %T", err)
			}
			if callErr.Op != fnAll {
				t.Fatalf("op mismatch: want %q got %q", fnAll, callErr.Op)
			}

			if tc.wantCause != nil && !errors.Is(err, tc.wantCause) {
				t.Fatalf("expected cause %v to be reachable from %v", tc.wantCause, err)
			}
		})
	}
}

func TestCallErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &CallError{Op: fnRun, Kind: sdk.ErrHostCall, Err: cause}
	if got, want := err.Error(), "d1 run: host call failed: boom"; got != want {
		t.Fatalf("message mismatch: want %q got %q", want, got)
	}
	if errors.Unwrap(err) != cause {
		t.Fatalf("expected Unwrap to return the cause")
	}

	same := &CallError{Op: fnAll, Kind: ErrInvalidQuery, Err: ErrInvalidQuery}
	if got, want := same.Error(), "d1 all: query is invalid"; got != want {
		t.Fatalf("message mismatch: want %q got %q", want, got)
	}
}
