package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storiesJSON = `{"stories":["As a shopper, I want to search products so that I find them quickly","As a shopper, I want to pay by card so that checkout is fast"]}`
	boardJSON   = `{"columns":[{"name":"Search","description":"search story","tasks":[{"name":"Index products","storyPoints":3,"assignedTo":"Ana"}]},{"name":"Checkout","tasks":[{"name":"Card form","storyPoints":5}]}]}`
	tipJSON     = `{"tip":"Hold a short planning session","reasoning":"No task has started yet"}`
)

type fakeGemini struct {
	storyCalls atomic.Int32
	boardCalls atomic.Int32
	tipCalls   atomic.Int32
	lastPrompt atomic.Value
}

// startFakeGemini serves generateContent and answers by prompt kind
func startFakeGemini(t *testing.T) *fakeGemini {
	t.Helper()
	fake := &fakeGemini{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(raw, &req)
		prompt := req.Contents[0].Parts[0].Text
		fake.lastPrompt.Store(prompt)

		answer := tipJSON
		switch {
		case strings.Contains(prompt, "list of 5 to 8 relevant user stories"):
			fake.storyCalls.Add(1)
			answer = storiesJSON
		case strings.Contains(prompt, "initial Scrum board"):
			fake.boardCalls.Add(1)
			answer = boardJSON
		default:
			fake.tipCalls.Add(1)
		}

		body, _ := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{"parts": []map[string]string{{"text": answer}}},
			}},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_BASE_URL", server.URL)
	t.Setenv("AI_TIPS_ENABLED", "true")
	return fake
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerate_SuggestsStoriesWhenNoneGiven(t *testing.T) {
	fake := startFakeGemini(t)
	boardPath := filepath.Join(t.TempDir(), "board.json")

	out, _, err := run(t, "generate", "--name", "Webshop", "--team", "Ana, Ben", "--weeks", "6", "--out", boardPath)
	require.NoError(t, err)

	assert.Equal(t, int32(1), fake.storyCalls.Load())
	assert.Equal(t, int32(1), fake.boardCalls.Load())
	assert.Contains(t, out, "1. As a shopper, I want to search products")
	assert.Contains(t, out, "Board generated: 2 columns, 2 tasks")
	assert.Contains(t, out, "[Open       ] Index products (3) @Ana")
	assert.Contains(t, out, "Saved to "+boardPath)

	board, err := readBoard(boardPath)
	require.NoError(t, err)
	require.Len(t, board.Columns, 2)
	assert.Equal(t, board.Columns[0].ID, board.Columns[0].Tasks[0].ColumnID)
}

func TestGenerate_WithStories(t *testing.T) {
	fake := startFakeGemini(t)

	_, _, err := run(t, "generate", "-n", "Webshop", "-t", "Ana",
		"--story", "As a shopper, I want a wishlist so that I can buy later", "--sorted")
	require.NoError(t, err)

	assert.Equal(t, int32(0), fake.storyCalls.Load())
	assert.Equal(t, int32(1), fake.boardCalls.Load())
	assert.Contains(t, fake.lastPrompt.Load().(string), "- As a shopper, I want a wishlist so that I can buy later")
}

func TestGenerate_Failures(t *testing.T) {
	t.Run("실패: story too short", func(t *testing.T) {
		fake := startFakeGemini(t)
		_, errOut, err := run(t, "generate", "-n", "Webshop", "-t", "Ana", "--story", "short")
		assert.EqualError(t, err, "Invalid input")
		assert.Contains(t, errOut, "at least 10 characters")
		assert.Equal(t, int32(0), fake.boardCalls.Load())
	})

	t.Run("실패: no api key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("AI_API_KEY", "")
		_, errOut, err := run(t, "generate", "-n", "Webshop", "-t", "Ana")
		assert.EqualError(t, err, "No AI API key configured")
		assert.Contains(t, errOut, "export GEMINI_API_KEY")
	})

	t.Run("실패: missing required flags", func(t *testing.T) {
		startFakeGemini(t)
		_, _, err := run(t, "generate", "-n", "Webshop")
		assert.Error(t, err)
	})
}

func TestTip(t *testing.T) {
	fake := startFakeGemini(t)
	boardPath := filepath.Join(t.TempDir(), "board.json")
	_, _, err := run(t, "generate", "-n", "Webshop", "-t", "Ana", "--out", boardPath)
	require.NoError(t, err)

	out, _, err := run(t, "tip", "--board", boardPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Tip: Hold a short planning session")
	assert.Equal(t, int32(1), fake.tipCalls.Load())
	prompt := fake.lastPrompt.Load().(string)
	assert.Contains(t, prompt, "execution")
	assert.Contains(t, prompt, "Index products")

	_, errOut, err := run(t, "tip", "--board", filepath.Join(t.TempDir(), "none.json"))
	assert.EqualError(t, err, "Cannot read board")
	assert.Contains(t, errOut, "agileflow generate --out")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "agileflow dev\n", out)
}
