package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var closed = messaging.BreakClosedEvent{
	BreakRecordID:   12,
	EmployeeID:      1,
	EmployeeName:    "Alicia Lopez",
	EmployeeCode:    "ALC01",
	EmployeeShift:   model.ShiftFull,
	Category:        model.CategoryMeal,
	Date:            "2024-03-01",
	StartTime:       "13:00:00",
	EndTime:         "14:15:00",
	DurationMinutes: 75,
	ExcessMinutes:   35,
}

func TestRow(t *testing.T) {
	row := Row(closed)

	require.Len(t, row, len(Header))
	assert.Equal(t, []interface{}{
		"01/03/2024", "Friday", "Alicia Lopez", "ALC01", "Full",
		"COMIDA", "13:00:00", "14:15:00", 75, 1.25, 35, "EXCESO ALTO",
	}, row)
}

func TestRow_Status(t *testing.T) {
	e := closed
	e.Category, e.DurationMinutes = model.CategoryShortBreak, 18
	assert.Equal(t, "NORMAL", Row(e)[11])

	e.DurationMinutes = 25
	assert.Equal(t, "CON EXCESO", Row(e)[11])
}

type fakeClient struct {
	err  error
	reqs []AppendRequest
}

func (f *fakeClient) AppendRow(_ context.Context, req AppendRequest) error {
	f.reqs = append(f.reqs, req)
	return f.err
}

func msgFor(t *testing.T, e messaging.BreakClosedEvent) types.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return types.Message{Body: aws.String(string(b))}
}

func TestProcess_AppendsRow(t *testing.T) {
	client := &fakeClient{}
	p := NewProcessor(client)

	retry, _, err := p.Process(context.Background(), msgFor(t, closed))
	require.NoError(t, err)
	assert.False(t, retry)

	require.Len(t, client.reqs, 1)
	assert.Equal(t, "12", client.reqs[0].RowID)
	assert.Equal(t, SheetName, client.reqs[0].Sheet)
}

func TestProcess_RetriesOnWebhookFailure(t *testing.T) {
	p := NewProcessor(&fakeClient{err: errors.New("502")})

	retry, delay, err := p.Process(context.Background(), msgFor(t, closed))
	assert.Error(t, err)
	assert.True(t, retry)
	assert.Equal(t, int32(20), delay)
}

func TestHTTPClient_AppendRow(t *testing.T) {
	var got AppendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.AppendRow(context.Background(), AppendRequest{Sheet: SheetName, RowID: "12", Header: Header, Values: Row(closed)})
	require.NoError(t, err)

	assert.Equal(t, "12", got.RowID)
	assert.Equal(t, "Alicia Lopez", got.Values[2])
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).AppendRow(context.Background(), AppendRequest{RowID: "1"})
	assert.ErrorContains(t, err, "502")
}
