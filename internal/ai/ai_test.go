package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wigglebot/internal/chat"
	"wigglebot/pkg/retrylimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = retrylimit.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func TestOpenAIComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"choices":[{"message":{"content":"<think>hmm</think> \"hello there\" "}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL + "/", Key: "sekrit", MaxTokens: 100, Retry: fastRetry})
	turns := []Turn{
		System("be nice"),
		{Role: RoleUser, Name: "alice", Content: "look", Images: []string{"http://x/cat.png"}},
	}

	reply, err := p.Complete(context.Background(), turns, "m1", true)
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	assert.Equal(t, "m1", got["model"])
	assert.EqualValues(t, 100, got["max_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "be nice", msgs[0].(map[string]any)["content"])
	user := msgs[1].(map[string]any)
	assert.Equal(t, "alice", user["name"])
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
}

func TestOpenAIDropsImagesWhenNotAllowed(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Retry: fastRetry})
	_, err := p.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "hi", Images: []string{"u"}}}, "m", false)
	require.NoError(t, err)
	msg := got["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "hi", msg["content"])
}

func TestOpenAIRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"second time"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Retry: fastRetry})
	reply, err := p.Complete(context.Background(), nil, "m", false)
	require.NoError(t, err)
	assert.Equal(t, "second time", reply)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenAIClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Retry: fastRetry})
	_, err := p.Complete(context.Background(), nil, "m", false)

	var se *retrylimit.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Retry: fastRetry})
	_, err := p.Complete(context.Background(), nil, "m", false)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAIGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Retry: fastRetry})
	img, err := p.GenerateImage(context.Background(), "a fox")
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, `"a fox"`, img.Caption)
}

func TestPollinations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/openai", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"pong"}}]}`))
	})
	mux.HandleFunc("/prompt/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prompt/red fox", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPollinationsProvider(PollinationsConfig{
		TextURL:  srv.URL + "/openai",
		ImageURL: srv.URL + "/prompt/",
		Retry:    fastRetry,
	})

	reply, err := p.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "ping"}}, "", false)
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)

	img, err := p.GenerateImage(context.Background(), "red fox")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), img.Data)
}

func TestCleanReply(t *testing.T) {
	cases := map[string]string{
		`  plain  `:                   "plain",
		`"quoted"`:                    "quoted",
		`“curly”`:                     "curly",
		`"one" and "two"`:             `"one" and "two"`,
		"<think>\nplan\n</think>done": "done",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanReply(in), in)
	}
}

func TestNamesAndIDs(t *testing.T) {
	assert.Equal(t, "Bob_Smith-2", Name("Bob_Smith-2 ✨"))
	assert.Equal(t, "a", Name("✨✨"))
	assert.Equal(t, "hi _123_ and _45_", IDsToNames("hi <@123> and <@!45>"))
	assert.Equal(t, "hi <@123>", NamesToIDs("hi _123_"))
}

func TestTranscript(t *testing.T) {
	me := chat.User{ID: "bot", Username: "wiggly", Bot: true}
	isMe := func(u chat.User) bool { return u.ID == me.ID }
	msgs := []*chat.Message{
		{Author: chat.User{ID: "1", Username: "alice"}, Content: "!ai what is up", Attachments: []chat.Attachment{{URL: "http://x/a.png", ContentType: "image/png"}}},
		{Author: me, Content: "the sky"},
	}

	turns := Transcript(msgs, isMe, false)
	require.Len(t, turns, 2)
	assert.Equal(t, Turn{Role: RoleUser, Name: "alice", Content: "what is up"}, turns[0])
	assert.Equal(t, RoleAssistant, turns[1].Role)

	visual := Transcript(msgs, isMe, true)
	assert.Equal(t, []string{"http://x/a.png"}, visual[0].Images)
	assert.Equal(t, RoleUser, visual[1].Role)
}
