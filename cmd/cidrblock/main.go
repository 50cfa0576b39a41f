package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"cidrblock/internal/config"
	"cidrblock/internal/engine"
	"cidrblock/internal/firewall"
	"cidrblock/internal/model"
	"cidrblock/internal/parser"
	"cidrblock/internal/utils"
	"cidrblock/pkg/wellknown"
)

var (
	configPath string
	envFile    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cidrblock [file]",
		Short: "Block IP ranges and CIDR lists with host firewall deny rules",
		Long: `cidrblock reads a list of IPv4 ranges ("a.b.c.d - e.f.g.h") and CIDR blocks,
converts every range into the minimal exact set of CIDR blocks and adds a
deny rule for each block through ufw or iptables.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	// Set up flags
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading CIDRBLOCK_* variables")
	rootCmd.Flags().StringP("file", "f", "", "Input file (prompted for when omitted)")
	rootCmd.Flags().String("provider", "list", "Input provider: 'list', 'fortigate' or 'mariadb'")
	rootCmd.Flags().String("db", "", "Database connection string (for 'mariadb' provider)")
	rootCmd.Flags().String("group", "", "Address group to block (for 'fortigate' and 'mariadb' providers, default: all objects)")
	rootCmd.Flags().String("backend", "ufw", "Firewall backend: 'ufw' or 'iptables' ('dry-run' is ufw with --dry-run)")
	rootCmd.Flags().Bool("dry-run", false, "Print the firewall commands instead of running them")
	rootCmd.Flags().Bool("sudo", true, "Run the firewall tool through sudo")
	rootCmd.Flags().String("binary", "", "Path of the firewall tool (default: backend name)")
	rootCmd.Flags().String("chain", "INPUT", "Chain to insert rules into (for 'iptables' backend)")
	rootCmd.Flags().String("service", "", "Only deny this service, e.g. 'ssh' or '8080/tcp' (default: all traffic)")
	rootCmd.Flags().Bool("list-only", false, "Print the CIDR blocks without applying them")
	rootCmd.Flags().String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().String("log-format", "json", "Log format: 'json' or 'text'")
	rootCmd.Flags().String("log-file", "", "Log file path (default: stderr)")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// --- 1. Load Configuration ---
	cfg, err := config.Load(configPath, envFile, cmd.Flags())
	if err != nil {
		return err
	}

	// --- 2. Setup Logging ---
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	slog.SetDefault(logger)

	slog.Info("Starting cidrblock", "provider", cfg.Provider, "backend", cfg.Backend)
	startTime := time.Now()

	service, err := wellknown.ParseService(cfg.Service)
	if err != nil {
		slog.Error("Invalid service", "service", cfg.Service, "error", err)
		return err
	}

	// --- 3. Resolve Input ---
	path := cfg.File
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" && cfg.Provider != "mariadb" {
		path, err = promptPath(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	// --- 4. Build Block Set ---
	blocks, err := loadBlocks(cfg, path)
	if err != nil {
		slog.Error("Failed to load blocks", "path", path, "error", err)
		return err
	}
	cidrs := blocks.Sorted()
	slog.Info("Block set built", "blocks", len(cidrs), "addresses", addressCount(cidrs))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Blocking %d CIDR blocks.\n", len(cidrs))

	if cfg.ListOnly {
		for _, c := range cidrs {
			fmt.Fprintln(out, c)
		}
		return nil
	}

	// --- 5. Apply Rules ---
	fw, err := firewall.New(cfg.Backend, firewall.Options{
		Sudo:    cfg.Sudo,
		Binary:  cfg.Binary,
		Chain:   cfg.Chain,
		Service: service,
		DryRun:  cfg.DryRun,
		Out:     out,
	})
	if err != nil {
		return err
	}

	summary := firewall.Apply(cmd.Context(), fw, cidrs, func(r model.ApplyResult) {
		if r.Applied {
			fmt.Fprintf(out, "applied: %s\n", r.CIDR)
		} else {
			fmt.Fprintf(out, "failed: %s\n", r.CIDR)
		}
	})
	fmt.Fprintln(out, "Done.")

	slog.Info("Rules applied", "total", summary.Total, "applied", summary.Applied, "failed", len(summary.Failed), "duration", time.Since(startTime))
	return nil
}

func promptPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the IP range file name: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", fmt.Errorf("no input file given")
	}
	return path, nil
}

func loadBlocks(cfg *config.Config, path string) (*engine.BlockSet, error) {
	switch strings.ToLower(cfg.Provider) {
	case "list":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open input file: %w", err)
		}
		defer file.Close()
		return parser.ParseBlockList(file)
	case "fortigate":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open input file: %w", err)
		}
		defer file.Close()
		p := parser.NewFortiGateParser(file)
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Blocks(cfg.Group)
	case "mariadb":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		p, err := parser.NewMariaDBParser(cfg.DSN)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Blocks(cfg.Group)
	default:
		return nil, fmt.Errorf("unknown input provider: %s", cfg.Provider)
	}
}

// addressCount sums the sizes of the well-formed blocks. Literal entries the
// firewall tool will reject are not counted.
func addressCount(cidrs []string) uint64 {
	var total uint64
	for _, c := range cidrs {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil || ipnet.IP.To4() == nil {
			continue
		}
		total += utils.CIDRSize(ipnet)
	}
	return total
}

func setupLogger(level, format, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		logWriter = &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	if strings.EqualFold(format, "text") {
		handler := charmlog.NewWithOptions(logWriter, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmlog.Level(lvl),
		})
		return slog.New(handler)
	}
	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}
