package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
	tu "github.com/desertthunder/mixfeed/internal/testing"
	"github.com/urfave/cli/v3"
)

// testConfig returns defaults pointed at a throwaway cache with no rate limiting to speak of.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Feed.BaseURL = "https://feed.test"
	config.Database.Path = filepath.Join(t.TempDir(), "cache.db")
	config.Export.RateLimit = 1000
	return config
}

// run executes args against a root command built from the runner's commands.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{Name: "mixfeed", Commands: r.register()}
	return root.Run(context.Background(), append([]string{"mixfeed"}, args...))
}

func twoPageFeed() *tu.MockFetcher {
	return tu.NewMockFetcher(map[int]*models.FeedPage{
		1: tu.Page(true, "a", "b"),
		2: tu.Page(false, "b", "c"),
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			fetcher := tu.NewMockFetcher(nil)
			api := services.NewAPIService("https://feed.test", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Feed:       fetcher,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.feed != fetcher {
				t.Error("expected feed to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if !runner.injected {
				t.Error("expected injected feed to be marked")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses a client with a timeout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient == nil || runner.httpClient.Timeout == 0 {
				t.Error("expected httpClient with a timeout")
			}
		})

		t.Run("wires feed client, api and player when not injected", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.feed.(*services.FeedClient); !ok {
				t.Errorf("expected *services.FeedClient, got %T", runner.feed)
			}
			if runner.api == nil {
				t.Error("expected api service")
			}
			if runner.newPlayer == nil {
				t.Error("expected player factory")
			}
			if runner.injected {
				t.Error("expected injected to be false")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"feed", "play", "cache", "setup", "api", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d: expected %q, got %q", i, want[i], cmd.Name)
			}
		}
	})
}

func TestFeedCommands(t *testing.T) {
	t.Run("list prints deduplicated tracks as JSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		fetcher := twoPageFeed()
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Feed: fetcher})

		if err := run(t, runner, "feed", "list", "--pages", "0", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var tracks []models.TrackSummary
		if err := json.Unmarshal(output.Bytes(), &tracks); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}

		var slugs []string
		for _, track := range tracks {
			slugs = append(slugs, track.Slug)
		}
		if strings.Join(slugs, ",") != "a,b,c" {
			t.Errorf("expected a,b,c, got %v", slugs)
		}
		if got := fetcher.Requests(); len(got) != 2 {
			t.Errorf("expected 2 requests, got %v", got)
		}
	})

	t.Run("list stops at --pages and reports the next page", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Track a") {
			t.Errorf("expected table with track titles, got %q", result)
		}
		if !strings.Contains(result, "2 tracks from 1 pages. Next page: 2") {
			t.Errorf("expected summary line, got %q", result)
		}
	})

	t.Run("list reports the end of the feed", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "list", "--pages", "0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "3 tracks from 2 pages. End of feed.") {
			t.Errorf("expected end of feed summary, got %q", output.String())
		}
	})

	t.Run("list rejects a page below 1", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Feed: twoPageFeed()})

		err := run(t, runner, "feed", "list", "--page", "0")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("list fails when the first page fails", func(t *testing.T) {
		fetcher := tu.NewMockFetcher(nil)
		fetcher.SetErr(shared.ErrFeedStatus)
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Feed: fetcher})

		err := run(t, runner, "feed", "list")
		if !errors.Is(err, shared.ErrFeedStatus) {
			t.Errorf("expected ErrFeedStatus, got %v", err)
		}
	})

	t.Run("export writes the file and caches the tracks", func(t *testing.T) {
		config := testConfig(t)
		dir := filepath.Join(t.TempDir(), "out")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "export", "--format", "csv", "--output", dir); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "feed_tracks.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if _, err := os.Stat(filepath.Join(dir, ".mixfeed.lock")); !os.IsNotExist(err) {
			t.Error("expected lock file to be removed")
		}
		if !strings.Contains(output.String(), "Export Complete!") {
			t.Errorf("expected completion banner, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "cache", "list", "--json"); err != nil {
			t.Fatalf("expected no error listing cache, got %v", err)
		}
		var cached []cachedTrackJSON
		if err := json.Unmarshal(output.Bytes(), &cached); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if len(cached) != 3 {
			t.Errorf("expected 3 cached tracks, got %d", len(cached))
		}
	})

	t.Run("export with --no-cache leaves the cache empty", func(t *testing.T) {
		config := testConfig(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Feed: twoPageFeed()})

		err := run(t, runner, "feed", "export", "--no-cache", "--output", filepath.Join(t.TempDir(), "out"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		output.Reset()
		if err := run(t, runner, "cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "The track cache is empty") {
			t.Errorf("expected empty cache message, got %q", output.String())
		}
	})

	t.Run("export rejects an unknown format", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "export", "--format", "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestCacheCommands(t *testing.T) {
	t.Run("clear removes cached tracks", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "export", "--output", filepath.Join(t.TempDir(), "out")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		output.Reset()
		if err := run(t, runner, "cache", "clear"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Cleared 3 tracks") {
			t.Errorf("expected clear summary, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "The track cache is empty") {
			t.Errorf("expected empty cache message, got %q", output.String())
		}
	})

	t.Run("list filters by user", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Feed: twoPageFeed()})

		if err := run(t, runner, "feed", "export", "--output", filepath.Join(t.TempDir(), "out")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		output.Reset()
		if err := run(t, runner, "cache", "list", "--user", "dj_b"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "Track b") || strings.Contains(result, "Track a") {
			t.Errorf("expected only dj_b's track, got %q", result)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("session stores the cookie in the config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), ConfigPath: configPath, Output: output})

		curl := `curl 'https://feed.test/tracks/feed-api/?page=1' -H 'Accept: application/json' -b 'sessionid=abc; theme=dark; csrftoken=xyz'`
		if err := run(t, runner, "setup", "session", "--curl", curl); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Feed.SessionCookie != "sessionid=abc; csrftoken=xyz" {
			t.Errorf("expected session cookies, got %q", loaded.Feed.SessionCookie)
		}
		if runner.config.Feed.SessionCookie != loaded.Feed.SessionCookie {
			t.Error("expected runner config to be updated")
		}
	})

	t.Run("session requires exactly one source", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})

		if err := run(t, runner, "setup", "session"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		err := run(t, runner, "setup", "session", "--curl", "curl x", "--curl-file", "x.sh")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("config writes the default file once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.toml")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := run(t, runner, "setup", "config", "--path", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := run(t, runner, "setup", "config", "--path", path); err == nil {
			t.Error("expected error when the file already exists")
		}
	})

	t.Run("database runs migrations", func(t *testing.T) {
		output := &bytes.Buffer{}
		config := testConfig(t)
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(t, runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
		if !strings.Contains(output.String(), "Track cache ready") {
			t.Errorf("expected ready message, got %q", output.String())
		}
	})
}
