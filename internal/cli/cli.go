package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/postboard/internal/analytics"
	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/filter"
	"github.com/studiowebux/postboard/internal/history"
	"github.com/studiowebux/postboard/internal/types"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// PostsClient is the subset of the API client the CLI needs
type PostsClient interface {
	List(ctx context.Context) ([]types.Post, error)
	Create(ctx context.Context, draft types.Draft) (types.Post, error)
	Update(ctx context.Context, id int, draft types.Draft) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// OutputOptions controls how results are printed
type OutputOptions struct {
	Out    io.Writer
	Format string // json, yaml, text
	Query  string // JMESPath query or $(bash command)
	Color  bool   // highlight JSON output
}

func (o OutputOptions) writer() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// ValidateFormat checks an output format name
func ValidateFormat(format string) error {
	switch format {
	case "", FormatJSON, FormatYAML, FormatText:
		return nil
	}
	return fmt.Errorf("invalid output format %q: must be json, yaml or text", format)
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunList prints every post
func RunList(ctx context.Context, client PostsClient, opts OutputOptions) error {
	posts, err := client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}
	return printResult(ctx, posts, opts)
}

// RunCreate creates a post and prints the server echo
func RunCreate(ctx context.Context, client PostsClient, draft types.Draft, opts OutputOptions) error {
	if err := validateDraft(draft); err != nil {
		return err
	}

	post, err := client.Create(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return printResult(ctx, post, opts)
}

// RunUpdate replaces the title and body of a post and prints the server echo
func RunUpdate(ctx context.Context, client PostsClient, id int, draft types.Draft, opts OutputOptions) error {
	if err := validateDraft(draft); err != nil {
		return err
	}

	post, err := client.Update(ctx, id, draft)
	if err != nil {
		return fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return printResult(ctx, post, opts)
}

// RunDelete deletes a post
func RunDelete(ctx context.Context, client PostsClient, id int, opts OutputOptions) error {
	if err := client.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	fmt.Fprintf(opts.writer(), "Deleted post %d\n", id)
	return nil
}

// HistoryOptions controls the history command
type HistoryOptions struct {
	Limit  int
	PostID int // 0 means all posts
	Clear  bool
}

// RunHistory prints or clears the request journal
func RunHistory(mgr *history.Manager, hopts HistoryOptions, opts OutputOptions) error {
	if hopts.Clear {
		if err := mgr.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(opts.writer(), "History cleared")
		return nil
	}

	var (
		entries []types.HistoryEntry
		err     error
	)
	if hopts.PostID > 0 {
		entries, err = mgr.LoadForPost(hopts.PostID)
	} else {
		entries, err = mgr.Load(hopts.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if hopts.PostID > 0 && hopts.Limit > 0 && len(entries) > hopts.Limit {
		entries = entries[:hopts.Limit]
	}

	return printResult(context.Background(), entries, opts)
}

// RunStats prints per-operation statistics computed from the journal
func RunStats(mgr *analytics.Manager, opts OutputOptions) error {
	stats, err := mgr.StatsPerOperation()
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return printResult(context.Background(), stats, opts)
}

// PromptField reads a single line for a missing field from r
func PromptField(r io.Reader, w io.Writer, name string) (string, error) {
	fmt.Fprintf(w, "Enter %s: ", name)
	value, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && value == "" {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func validateDraft(d types.Draft) error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// printResult applies the query, formats, and writes v
func printResult(ctx context.Context, v interface{}, opts OutputOptions) error {
	var (
		output string
		err    error
	)

	if opts.Query != "" {
		output, err = queryOutput(ctx, v, opts)
	} else {
		output, err = formatOutput(v, opts.Format)
	}
	if err != nil {
		return err
	}

	if opts.Color && (opts.Format == FormatJSON || (opts.Query != "" && opts.Format != FormatYAML)) {
		output = highlight(output, "json")
	}

	fmt.Fprint(opts.writer(), output)
	if !strings.HasSuffix(output, "\n") {
		fmt.Fprintln(opts.writer())
	}
	return nil
}

// queryOutput runs the query and re-encodes its JSON result as YAML when asked
func queryOutput(ctx context.Context, v interface{}, opts OutputOptions) (string, error) {
	result, err := filter.ApplyValue(ctx, v, opts.Query)
	if err != nil {
		return "", err
	}
	if opts.Format != FormatYAML || filter.IsShellCommand(opts.Query) {
		return result, nil
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		return "", fmt.Errorf("failed to decode query result: %w", err)
	}
	data, err := yaml.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("failed to encode query result: %w", err)
	}
	return string(data), nil
}

// formatOutput formats the result based on the output format
func formatOutput(v interface{}, format string) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case FormatText, "":
		return formatText(v), nil
	}

	return "", fmt.Errorf("invalid output format %q", format)
}

// formatText renders posts and journal entries for humans
func formatText(v interface{}) string {
	var sb strings.Builder

	switch v := v.(type) {
	case []types.Post:
		if len(v) == 0 {
			return "No posts\n"
		}
		for _, p := range v {
			writePost(&sb, p)
		}
		sb.WriteString(fmt.Sprintf("%d posts\n", len(v)))

	case types.Post:
		writePost(&sb, v)

	case []types.HistoryEntry:
		if len(v) == 0 {
			return "No history entries\n"
		}
		for _, e := range v {
			statusColor := getStatusColor(e.Status)
			status := fmt.Sprintf("%d", e.Status)
			if e.Status == 0 {
				status = "---"
			}
			sb.WriteString(fmt.Sprintf("%s  %s%s%s  %-6s %-6s %-40s %s",
				e.Timestamp, statusColor, status, colorReset,
				e.Operation, e.Method, e.URL, api.FormatDuration(e.Duration)))
			if e.Error != "" {
				sb.WriteString(fmt.Sprintf("  %s%s%s", colorRed, e.Error, colorReset))
			}
			sb.WriteString("\n")
		}

	case []analytics.Stats:
		if len(v) == 0 {
			return "No API calls recorded\n"
		}
		sb.WriteString(fmt.Sprintf("%-8s %-7s %6s %8s %7s %9s %9s %9s\n",
			"OP", "METHOD", "CALLS", "SUCCESS", "NETERR", "AVG", "MIN", "MAX"))
		for _, st := range v {
			sb.WriteString(fmt.Sprintf("%-8s %-7s %6d %7.1f%% %7d %9s %9s %9s\n",
				st.Operation, st.Method, st.TotalCalls, st.SuccessRate(), st.NetworkErrors,
				api.FormatDuration(int64(st.AvgDurationMs)),
				api.FormatDuration(st.MinDurationMs),
				api.FormatDuration(st.MaxDurationMs)))
		}

	default:
		data, _ := json.MarshalIndent(v, "", "  ")
		sb.Write(data)
		sb.WriteString("\n")
	}

	return sb.String()
}

func writePost(sb *strings.Builder, p types.Post) {
	sb.WriteString(fmt.Sprintf("[%d] %s\n", p.ID, p.Title))
	for _, line := range strings.Split(p.Body, "\n") {
		sb.WriteString("    " + line + "\n")
	}
	sb.WriteString("\n")
}

// highlight colors source for a terminal, returning it unchanged on failure
func highlight(source, lexer string) string {
	var sb strings.Builder
	if err := quick.Highlight(&sb, source, lexer, "terminal256", "monokai"); err != nil {
		return source
	}
	return sb.String()
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if status >= 200 && status < 300 {
		return colorGreen
	} else if status >= 400 || status == 0 {
		return colorRed
	}
	return colorYellow
}
