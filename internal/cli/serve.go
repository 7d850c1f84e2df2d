package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/listtree/pkg/buildinfo"
	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/observability"
	"github.com/matzehuels/listtree/pkg/pipeline"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 5 * time.Second
)

// diagramRoutes maps viewer paths to output formats.
var diagramRoutes = map[string]string{
	"/layout.json": pipeline.FormatJSON,
	"/diagram.txt": pipeline.FormatText,
	"/diagram.dot": pipeline.FormatDOT,
	"/diagram.svg": pipeline.FormatSVG,
	"/diagram.png": pipeline.FormatPNG,
	"/diagram.pdf": pipeline.FormatPDF,
}

// serveCommand creates the HTTP viewer command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [script.toml]",
		Short: "Serve a live view of an edit script over HTTP",
		Long: `Serve a live view of an edit script over HTTP.

The script is read again on every request, so edits show up on reload.

Routes:
  /              HTML page with the text diagram
  /layout.json   layout snapshot
  /diagram.txt   text diagram (?ascii=true, ?labels=false)
  /diagram.dot   Graphviz source (?detailed=true)
  /diagram.svg   SVG rendered with Graphviz
  /diagram.png   PNG (?scale=2), requires rsvg-convert
  /diagram.pdf   PDF, requires rsvg-convert
  /version       build information`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner()
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			s := &server{runner: runner, script: args[0], logger: loggerFromContext(cmd.Context())}
			return s.listenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", defaultAddr, "listen address")

	return cmd
}

// server serves renderings of one script.
type server struct {
	runner *pipeline.Runner
	script string
	logger *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/version", handleVersion)
	for path, format := range diagramRoutes {
		r.Get(path, s.handleFormat(format))
	}
	return r
}

func (s *server) listenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving %s", s.script)
	printKeyValue("Address", "http://"+addr+"/")
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// observe reports requests to the HTTP hooks and attaches a request-scoped
// logger to the context.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := withLogger(r.Context(), logger)

		hooks.OnRequest(ctx, r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, d)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", d)
	})
}

func (s *server) handleFormat(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := queryOptions(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		opts.Formats = []string{format}

		data, err := s.render(r.Context(), opts, format)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentType(format))
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatText}
	diagram, err := s.render(r.Context(), opts, pipeline.FormatText)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n", html.EscapeString(s.script))
	fmt.Fprintf(&b, "<h1>%s</h1>\n<pre>%s</pre>\n<p>", html.EscapeString(s.script), html.EscapeString(string(diagram)))
	for _, path := range []string{"/layout.json", "/diagram.txt", "/diagram.dot", "/diagram.svg"} {
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a> ", path, path)
	}
	b.WriteString("</p>\n</body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, buildinfo.String())
}

func (s *server) render(ctx context.Context, opts pipeline.Options, format string) ([]byte, error) {
	opts.ScriptPath = s.script
	opts.Logger = loggerFromContext(ctx)
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return result.Artifacts[format], nil
}

// fail reports err to the hooks and writes it with a status derived from
// its error code.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}

func statusFor(err error) int {
	var numErr *strconv.NumError
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeFileNotFound, code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeInvalidScript, code == errors.ErrCodeInvalidLabel:
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeInvalidArgument, code == errors.ErrCodeInvalidFormat,
		stderrors.As(err, &numErr):
		return http.StatusBadRequest
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// queryOptions reads render options from the query string.
func queryOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error

	flags := []struct {
		name string
		dst  *bool
	}{
		{"ascii", &opts.ASCII},
		{"detailed", &opts.Detailed},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		if v := q.Get(f.name); v != "" {
			if *f.dst, err = strconv.ParseBool(v); err != nil {
				return opts, fmt.Errorf("query %s: %w", f.name, err)
			}
		}
	}
	if v := q.Get("labels"); v != "" {
		show, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("query labels: %w", err)
		}
		opts.HideLabels = !show
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, fmt.Errorf("query scale: %w", err)
		}
	}
	return opts, nil
}
