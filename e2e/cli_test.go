package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath   string
	serverURL    string
	identityFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "svpcli-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/svpcli")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:   binaryPath,
		serverURL:    serverURL,
		identityFile: filepath.Join(t.TempDir(), "participant"),
	}
}

// withIdentityFile returns a runner sharing the binary but with its own identity
func (r *cliRunner) withIdentityFile(path string) *cliRunner {
	return &cliRunner{
		binaryPath:   r.binaryPath,
		serverURL:    r.serverURL,
		identityFile: path,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--identity-file", r.identityFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application
	app, err := factory.New(factory.Config{
		Game: config.Config{
			LobbyDeadlineSec:      90,
			CollectingDeadlineSec: 60,
			DecidingDeadlineSec:   30,
			MinPerCategory:        2,
			MaxPerCategory:        2,
			AutoStartOnMin:        true,
		},
		Logger: logger,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Store:       app.Storage,
		Registry:    app.Registry,
		Matchmaker:  app.Matchmaker,
		Sessions:    app.Sessions,
		Submissions: app.Submissions,
		HubManager:  app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			app.Sessions.Shutdown()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type participantResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
}

type snapshotResponse struct {
	SessionID  string `json:"session_id"`
	Phase      string `json:"phase"`
	TotalItems int    `json:"total_items"`
	Males      []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Category    string `json:"category"`
	} `json:"males"`
	Females []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Category    string `json:"category"`
	} `json:"females"`
	Prompts []struct {
		ID       string `json:"id"`
		AuthorID string `json:"author_id"`
		Text     string `json:"text"`
		Ordinal  int    `json:"ordinal"`
	} `json:"prompts"`
	Answers []struct {
		PromptID    string `json:"prompt_id"`
		ResponderID string `json:"responder_id"`
		Text        string `json:"text"`
	} `json:"answers"`
}

type joinResponse struct {
	SessionID string           `json:"session_id"`
	Snapshot  snapshotResponse `json:"snapshot"`
}

type matchListResponse struct {
	SessionID string `json:"session_id"`
	Matches   []struct {
		FirstID  string `json:"first_id"`
		SecondID string `json:"second_id"`
	} `json:"matches"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// resolveParticipant registers an identity and declares a category
func resolveParticipant(t *testing.T, cli *cliRunner, externalID, name, category string) string {
	t.Helper()

	output, err := cli.run("participant", "resolve", "--external-id", externalID, "--name", name)
	require.NoError(t, err, "output: %s", output)

	var resp participantResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))

	output, err = cli.run("participant", "category", category)
	require.NoError(t, err, "output: %s", output)

	return resp.ID
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_ParticipantCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Resolve identity
	output, err := cli.run("participant", "resolve", "--external-id", "tg:1001", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var resolved participantResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resolved))
	assert.Equal(t, "Alice", resolved.DisplayName)
	assert.NotEmpty(t, resolved.ID)

	// Me (identity should be saved in identity file)
	output, err = cli.run("participant", "me")
	require.NoError(t, err, "output: %s", output)

	var me participantResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, resolved.ID, me.ID)

	// Declare category
	output, err = cli.run("participant", "category", "female")
	require.NoError(t, err, "output: %s", output)

	var updated participantResponse
	require.NoError(t, json.Unmarshal([]byte(output), &updated))
	assert.Equal(t, "female", updated.Category)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	// Four CLI runners with separate identity files
	base := newCLIRunner(t, ts.addr)
	dir := t.TempDir()
	clis := map[string]*cliRunner{
		"m1": base,
		"m2": base.withIdentityFile(filepath.Join(dir, "m2")),
		"f1": base.withIdentityFile(filepath.Join(dir, "f1")),
		"f2": base.withIdentityFile(filepath.Join(dir, "f2")),
	}

	ids := map[string]string{
		"m1": resolveParticipant(t, clis["m1"], "tg:1", "Miroslav", "male"),
		"m2": resolveParticipant(t, clis["m2"], "tg:2", "Maksim", "male"),
		"f1": resolveParticipant(t, clis["f1"], "tg:3", "Faina", "female"),
		"f2": resolveParticipant(t, clis["f2"], "tg:4", "Vera", "female"),
	}
	categoryByID := map[string]string{
		ids["m1"]: "male", ids["m2"]: "male",
		ids["f1"]: "female", ids["f2"]: "female",
	}
	cliByID := map[string]*cliRunner{
		ids["m1"]: clis["m1"], ids["m2"]: clis["m2"],
		ids["f1"]: clis["f1"], ids["f2"]: clis["f2"],
	}

	// Everyone joins; the fourth join starts the session
	var sessionID string
	for _, who := range []string{"m1", "m2", "f1", "f2"} {
		output, err := clis[who].run("session", "join", "--prompt", "Mountains or sea?")
		require.NoError(t, err, "output: %s", output)

		var joined joinResponse
		require.NoError(t, json.Unmarshal([]byte(output), &joined))
		if sessionID == "" {
			sessionID = joined.SessionID
		}
		require.Equal(t, sessionID, joined.SessionID)
	}
	t.Logf("Session started: %s", sessionID)

	// Check the roster is presented
	output, err := clis["m1"].run("session", "show", sessionID)
	require.NoError(t, err, "output: %s", output)
	var snap snapshotResponse
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.Equal(t, "roster", snap.Phase)
	require.Len(t, snap.Males, 2)
	require.Len(t, snap.Females, 2)

	// Acknowledge the roster
	output, err = clis["m1"].run("session", "ack", sessionID)
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Contains(t, msg.Message, "acknowledged")

	// Fetch the questions
	output, err = clis["m1"].run("session", "show", sessionID)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.Equal(t, "collecting", snap.Phase)
	require.Len(t, snap.Prompts, 4)

	// Every prompt is answered by the whole opposite category
	for _, prompt := range snap.Prompts {
		for id, category := range categoryByID {
			if category == categoryByID[prompt.AuthorID] {
				continue
			}
			output, err = cliByID[id].run("session", "answer", sessionID,
				"--prompt", prompt.ID, "--text", "Definitely the first one")
			require.NoError(t, err, "output: %s", output)
		}
	}

	// All answers in, the session moved to deciding
	output, err = clis["m1"].run("session", "show", sessionID)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.Equal(t, "deciding", snap.Phase)
	require.Len(t, snap.Answers, 8)

	// m1 and f1 pick each other, m2 is one-sided, f2 picks nobody
	output, err = clis["m1"].run("session", "choose", sessionID, "--target", ids["f1"])
	require.NoError(t, err, "output: %s", output)
	output, err = clis["f1"].run("session", "choose", sessionID, "--target", ids["m1"])
	require.NoError(t, err, "output: %s", output)
	output, err = clis["m2"].run("session", "choose", sessionID, "--target", ids["f2"])
	require.NoError(t, err, "output: %s", output)
	output, err = clis["f2"].run("session", "choose", sessionID, "--nobody")
	require.NoError(t, err, "output: %s", output)

	// Only the mutual pair matched
	output, err = clis["m1"].run("session", "matches", sessionID)
	require.NoError(t, err, "output: %s", output)

	var matches matchListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &matches))
	require.Len(t, matches.Matches, 1)
	pair := []string{matches.Matches[0].FirstID, matches.Matches[0].SecondID}
	assert.ElementsMatch(t, []string{ids["m1"], ids["f1"]}, pair)
}

func TestCLI_ReportCommand(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := cli1.withIdentityFile(filepath.Join(t.TempDir(), "participant2"))

	resolveParticipant(t, cli1, "tg:1", "Alice", "female")
	reportedID := resolveParticipant(t, cli2, "tg:2", "Bob", "male")

	output, err := cli1.run("report", "--participant", reportedID, "--reason", "offensive answer")
	require.NoError(t, err, "output: %s", output)

	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Contains(t, msg.Message, "filed")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Me without a resolved identity
	output, err := cli.run("participant", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "identity required")

	// Join before declaring a category
	output, err = cli.run("participant", "resolve", "--external-id", "tg:1", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("session", "join", "--prompt", "Mountains or sea?")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "category")

	// Unknown session
	output, err = cli.run("session", "show", "nosuchsession")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}
