// goscribe transcribes an audio file or URL with AssemblyAI (or OpenAI
// Whisper) and writes the transcript next to the input. A transcript that
// already exists is printed instead of being redone.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/goscribe/internal/config"
	. "github.com/roelfdiedericks/goscribe/internal/logging"
	"github.com/roelfdiedericks/goscribe/internal/runner"
	"github.com/roelfdiedericks/goscribe/internal/stt"
	"github.com/roelfdiedericks/goscribe/internal/transcript"
)

const version = "0.1.0"

// CLI is the command line surface.
type CLI struct {
	AudioInput       string       `arg:"" name:"audio_input" help:"Audio file path or http(s) URL."`
	Diarisation      bool         `short:"d" help:"Label utterances by speaker."`
	Output           string       `short:"o" placeholder:"PATH" help:"Transcript destination. '-' prints to stdout without writing a file. Default: input path with .txt."`
	Quiet            bool         `short:"q" help:"Suppress progress and status lines."`
	ExpectedSpeakers speakerCount `short:"e" default:"-1" placeholder:"N" help:"Expected number of speakers (-1 = let the service decide)."`
	Language         string       `short:"l" default:"auto" help:"Language code, 'auto' to detect."`
	Verbose          bool         `short:"v" help:"Emit progress lines while waiting."`

	Provider     string           `help:"Transcription provider: assemblyai or openai. Overrides config."`
	PollInterval time.Duration    `help:"Delay between status queries. Overrides config."`
	Timeout      time.Duration    `help:"Give up waiting after this long (0 = never). Overrides config."`
	NoSidecar    bool             `name:"no-sidecar" help:"Do not write the raw <output>.response file."`
	Config       string           `type:"path" placeholder:"FILE" help:"Config file (default ./goscribe.toml or ~/.goscribe/goscribe.toml)."`
	Version      kong.VersionFlag `help:"Print version and exit."`
}

// apply lets explicitly given flags win over the loaded configuration.
func (c *CLI) apply(cfg *config.Config) {
	if c.Provider != "" {
		cfg.Provider = c.Provider
	}
	if c.PollInterval > 0 {
		cfg.AssemblyAI.PollInterval = c.PollInterval
	}
	if c.Timeout > 0 {
		cfg.AssemblyAI.Timeout = c.Timeout
	}
	if c.NoSidecar {
		off := false
		cfg.Sidecar = &off
	}
}

func (c *CLI) options() stt.Options {
	opts := stt.DefaultOptions()
	opts.Diarisation = c.Diarisation
	opts.ExpectedSpeakers = int(c.ExpectedSpeakers)
	if c.Language != "" {
		opts.Language = c.Language
	}
	return opts
}

// speakerCount takes the next token verbatim so "-e -1" is read as a value
// rather than a short flag.
type speakerCount int

func (s *speakerCount) Decode(ctx *kong.DecodeContext) error {
	token := ctx.Scan.Pop()
	if token.IsEOL() {
		return fmt.Errorf("expected a number of speakers")
	}
	raw := strings.TrimPrefix(fmt.Sprint(token.Value), "=")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected an integer but got %q", raw)
	}
	if n < stt.SpeakersUnset {
		return fmt.Errorf("must be %d or more, got %d", stt.SpeakersUnset, n)
	}
	*s = speakerCount(n)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run is main without process globals. It returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("goscribe"),
		kong.Description("Transcribe speech to text, resuming from an existing transcript."),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": "goscribe " + version},
	)
	if err != nil {
		fmt.Fprintf(stderr, "goscribe: %v\n", err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	Init(&LogConfig{
		Level:  LevelFor(cli.Quiet, cli.Verbose),
		Output: stderr,
	})

	cfg, err := config.Load(config.LoadOptions{Path: cli.Config, Getenv: getenv})
	if err != nil {
		return fail(err)
	}
	cli.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	L_debug("config loaded", "provider", cfg.Provider, "sidecar", cfg.SidecarEnabled())

	provider, err := stt.NewProvider(cfg.STT())
	if err != nil {
		return fail(err)
	}
	defer provider.Close()

	req := runner.Request{
		Source:  cli.AudioInput,
		Output:  cli.Output,
		Options: cli.options(),
		Sidecar: cfg.SidecarEnabled(),
	}
	if _, err := runner.Run(ctx, req, provider, stdout); err != nil {
		return fail(err)
	}
	return 0
}

// fail reports err as a single error line and returns the exit code.
func fail(err error) int {
	L_error(describe(err), "error", err)
	return 1
}

func describe(err error) string {
	var (
		cfgErr    *config.ConfigError
		transport *stt.TransportError
		remote    *stt.RemoteJobError
		protocol  *stt.ProtocolError
		localIO   *transcript.IOError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration error"
	case errors.Is(err, stt.ErrTimeout):
		return "timed out waiting for transcript"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.As(err, &remote):
		return "transcription failed"
	case errors.As(err, &protocol):
		return "unexpected response from service"
	case errors.As(err, &transport):
		return "request failed"
	case errors.As(err, &localIO):
		return "output error"
	default:
		return "failed"
	}
}
