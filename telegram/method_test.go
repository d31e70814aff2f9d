package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeClient struct {
	raw json.RawMessage
	err error

	gotMethod  string
	gotFields  map[string]any
	gotUploads []Upload
}

func (f *fakeClient) Do(ctx context.Context, method string, fields map[string]any, uploads []Upload) (json.RawMessage, error) {
	f.gotMethod, f.gotFields, f.gotUploads = method, fields, uploads
	return f.raw, f.err
}

func TestExecuteDecodesResult(t *testing.T) {
	c := &fakeClient{raw: json.RawMessage(`true`)}
	m := AnswerCallbackQuery("cbq-1", "thanks")

	ok, err := Execute(context.Background(), c, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected true")
	}
	if c.gotMethod != "answerCallbackQuery" {
		t.Fatalf("gotMethod = %q", c.gotMethod)
	}
	if c.gotFields["callback_query_id"] != "cbq-1" || c.gotFields["text"] != "thanks" {
		t.Fatalf("gotFields = %v", c.gotFields)
	}
}

func TestExecutePropagatesTransportError(t *testing.T) {
	wantErr := &TransportError{Method: "sendMessage", Err: errors.New("boom")}
	c := &fakeClient{err: wantErr}

	_, err := Execute(context.Background(), c, SendMessage(1, "hi"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestExecuteWrapsDecodeFailure(t *testing.T) {
	c := &fakeClient{raw: json.RawMessage(`{`)} // malformed JSON

	_, err := Execute(context.Background(), c, SendMessage(1, "hi"))
	var decErr *DecodingError
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want *DecodingError", err)
	}
}

func TestGetUpdatesOmitsZeroOffset(t *testing.T) {
	m := GetUpdates(GetUpdatesParams{Offset: 0, Limit: 100, Timeout: 30})
	fields, err := m.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := fields["offset"]; present {
		t.Fatal("offset should be omitted when zero")
	}

	m2 := GetUpdates(GetUpdatesParams{Offset: 5, Limit: 100, Timeout: 30})
	fields2, _ := m2.Encode()
	if fields2["offset"] != 5 {
		t.Fatalf("offset = %v, want 5", fields2["offset"])
	}
}

func TestSendPhotoExistingFileIDHasNoUploads(t *testing.T) {
	m := SendPhoto(1, "", Upload{FileID: "file-123"})
	uploads, err := m.Uploads()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uploads) != 0 {
		t.Fatalf("uploads = %v, want none for an existing file reference", uploads)
	}
	fields, _ := m.Encode()
	if fields["photo"] != "file-123" {
		t.Fatalf("fields[photo] = %v", fields["photo"])
	}
}
