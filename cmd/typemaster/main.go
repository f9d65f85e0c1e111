// Package main provides the CLI entrypoint for typemaster.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typemaster/internal/coach"
	"github.com/verte-zerg/typemaster/internal/config"
	"github.com/verte-zerg/typemaster/internal/feedback"
	"github.com/verte-zerg/typemaster/internal/generator"
	"github.com/verte-zerg/typemaster/internal/lessons"
	"github.com/verte-zerg/typemaster/internal/llm"
	"github.com/verte-zerg/typemaster/internal/logger"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
	"github.com/verte-zerg/typemaster/internal/session"
	"github.com/verte-zerg/typemaster/internal/stats"
	"github.com/verte-zerg/typemaster/internal/statsui"
	"github.com/verte-zerg/typemaster/internal/store"
	"github.com/verte-zerg/typemaster/internal/tui"
	"github.com/verte-zerg/typemaster/internal/wordlist"
)

const defaultCurveWindow = 5

var (
	practiceLesson   string
	practiceTheme    string
	practiceSeed     int64
	practiceWordList string
	dbPath           string
	debugLog         bool

	statsLesson      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsInteractive bool

	profileJSON bool
	resetYes    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typemaster",
		Short:         "Terminal touch-typing tutor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLesson, "lesson", "", "start this lesson id instead of the lesson menu")
	rootCmd.Flags().StringVar(&practiceTheme, "theme", "", "practice theme for AI stories")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "seed for reproducible generated text (0: random)")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", "", "custom vocabulary file, one word per line")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/typemaster/typemaster.db)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug entries to the log file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newProfileCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lesson", &practiceLesson, fileCfg.Practice.Lesson)
	applyStringConfig(cmd, "theme", &practiceTheme, fileCfg.Practice.Theme)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)
	applyStringConfig(cmd, "wordlist", &practiceWordList, fileCfg.Practice.WordList)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Practice.DB)
	dbFile := resolveDBPath()

	cfg := model.Config{
		Lesson:       strings.TrimSpace(practiceLesson),
		Theme:        strings.TrimSpace(practiceTheme),
		Seed:         practiceSeed,
		WordListPath: resolveWordList(practiceWordList),
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	log := openLogger()
	defer log.Sync()

	gen := newGenerator(cfg.Seed)
	if cfg.WordListPath != "" {
		words, err := wordlist.LoadWords(cfg.WordListPath)
		if err != nil {
			return fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
		}
		gen.WithVocabulary(words)
		log.Info("custom vocabulary loaded", "path", cfg.WordListPath, "words", len(words))
	}

	st, err := openStore(dbFile)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	aiCfg, err := aiConfig(fileCfg.AI)
	if err != nil {
		return err
	}
	provider := newProvider(ctx, aiCfg, log)
	fb := feedback.New(
		feedback.Config{PerMinuteLimit: aiCfg.PerMinuteLimit, Timeout: aiCfg.Timeout},
		provider,
		st,
		rand.New(rand.NewSource(seedOrNow(cfg.Seed))),
		nil,
		log,
	)

	c := coach.New(ctx, coach.Deps{
		Generator:     gen,
		Profiles:      profile.NewStore(st, log),
		Runs:          st,
		Feedback:      fb,
		Logger:        log,
		WatchInterval: session.PollInterval,
	})
	if cfg.Theme != "" {
		c.SetTheme(ctx, cfg.Theme)
	}

	m := tui.NewModel(ctx, c, tui.Options{Lesson: cfg.Lesson})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, l := range lessons.All() {
		line := fmt.Sprintf("%-2s %-24s %-13s %s", l.ID, l.Title, l.Type, lessonGoal(l))
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func lessonGoal(l model.Lesson) string {
	var parts []string
	if l.TimeLimitSec > 0 {
		parts = append(parts, fmt.Sprintf("%ds", l.TimeLimitSec))
	}
	if l.MinWPM > 0 {
		parts = append(parts, fmt.Sprintf(">= %d WPM", l.MinWPM))
	}
	if l.MinAccuracy > 0 {
		parts = append(parts, fmt.Sprintf(">= %d%% accuracy", l.MinAccuracy))
	}
	return strings.Join(parts, ", ")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLesson, "lesson", "", "lesson filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVarP(&statsInteractive, "interactive", "i", false, "browse stats in a TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsLesson, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := openStore(dbPathFor(cmd))
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	p := profile.NewStore(st, logger.Nop()).Load(ctx)
	if statsInteractive {
		program := tea.NewProgram(statsui.NewModel(ctx, st, p, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(ctx, st, p, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, stats.TerminalWidth())
}

func statsConfig(lesson, since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--window must be > 0")
	}
	lesson = strings.TrimSpace(lesson)
	if lesson != "" {
		if _, err := lessons.Lookup(lesson); err != nil {
			return model.StatsConfig{}, fmt.Errorf("--lesson: %w", err)
		}
	}
	return model.StatsConfig{
		LessonID:    lesson,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
	}, nil
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or reset the learner profile",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the learner profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileShowCmd,
	}
	show.Flags().BoolVar(&profileJSON, "json", false, "print the stored document")
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the profile and run history",
		Args:  cobra.NoArgs,
		RunE:  runProfileResetCmd,
	}
	reset.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(show, reset)
	return cmd
}

func runProfileShowCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(dbPathFor(cmd))
	if err != nil {
		return err
	}
	defer closeStore(st)

	p := profile.NewStore(st, logger.Nop()).Load(context.Background())
	out := cmd.OutOrStdout()
	if profileJSON {
		doc, err := profile.Encode(p)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		_, err = fmt.Fprintln(out, string(doc))
		return err
	}
	for _, line := range profileLines(p) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func profileLines(p profile.Profile) []string {
	last := "never"
	if p.LastPracticeDate != nil {
		last = p.LastPracticeDate.String()
	}
	completed := "none"
	if len(p.CompletedLessons) > 0 {
		completed = strings.Join(p.CompletedLessons, ", ")
	}
	sound := "off"
	if p.Sound {
		sound = "on"
	}
	return []string{
		fmt.Sprintf("Level:      %d (%d XP, next at %d)", p.Level(), p.XP, p.NextLevelXP()),
		fmt.Sprintf("Streak:     %d day(s), last practice %s", p.Streak, last),
		fmt.Sprintf("Best WPM:   %d", p.BestWPM()),
		fmt.Sprintf("Total keys: %d", p.TotalKeys),
		fmt.Sprintf("Completed:  %s", completed),
		fmt.Sprintf("Theme:      %s", p.Theme),
		fmt.Sprintf("Sound:      %s", sound),
	}
}

func runProfileResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		ok, err := confirm(cmd, "Delete profile and run history? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return err
		}
	}
	st, err := openStore(dbPathFor(cmd))
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.ResetProfile(context.Background()); err != nil {
		return fmt.Errorf("failed to reset profile: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Profile reset.")
	return err
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// aiConfig merges the [ai] section over the environment.
func aiConfig(file config.AIConfig) (llm.Config, error) {
	cfg, _ := llm.DiscoverConfig()
	if file.Provider != nil && strings.TrimSpace(*file.Provider) != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(*file.Provider))
	}
	if file.Model != nil && strings.TrimSpace(*file.Model) != "" {
		cfg.SetModel(strings.TrimSpace(*file.Model))
	}
	if file.PerMinuteLimit != nil {
		if *file.PerMinuteLimit <= 0 {
			return llm.Config{}, fmt.Errorf("[ai] per-minute-limit must be > 0")
		}
		cfg.PerMinuteLimit = *file.PerMinuteLimit
	}
	if file.Timeout != nil {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil || d <= 0 {
			return llm.Config{}, fmt.Errorf("[ai] timeout must be a positive duration")
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// newProvider returns nil when no provider can be built; the app then runs
// in local mode.
func newProvider(ctx context.Context, cfg llm.Config, log *logger.Logger) llm.Provider {
	p, err := llm.NewProvider(ctx, cfg, log)
	if err != nil {
		log.Info("remote text generation disabled", "reason", err.Error())
		return nil
	}
	log.Info("remote text generation enabled", "provider", cfg.Provider)
	return p
}

func openLogger() *logger.Logger {
	log, err := logger.New(config.DefaultLogPath(), debugLog)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return logger.Nop()
	}
	return log
}

func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// dbPathFor applies the config file's db path unless --db was given.
func dbPathFor(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("db") {
		if fileCfg, err := config.LoadConfig(config.DefaultConfigPath()); err == nil {
			applyStringConfig(cmd, "db", &dbPath, fileCfg.Practice.DB)
		}
	}
	return resolveDBPath()
}

func resolveDBPath() string {
	if strings.TrimSpace(dbPath) != "" {
		return expandHome(dbPath)
	}
	return config.DefaultDBPath()
}

func newGenerator(seed int64) *generator.Generator {
	if seed == 0 {
		return generator.New()
	}
	return generator.NewSeeded(seed)
}

func seedOrNow(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// resolveWordList looks a bare file name up in the word list directory
// when it does not exist relative to the working directory.
func resolveWordList(name string) string {
	path := expandHome(name)
	if path == "" || strings.ContainsRune(path, filepath.Separator) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(config.DefaultWordListDir(), path)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.Lesson != "" {
		if _, err := lessons.Lookup(cfg.Lesson); err != nil {
			return fmt.Errorf("--lesson: %w (run: typemaster lessons)", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
