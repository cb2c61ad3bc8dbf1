package viewer

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// launchPath defines a single way to launch a viewer
type launchPath struct {
	path      string   // Command path: "zathura", or "open-a:AppName" on macOS
	openFlags []string // For "open-a:" paths only, flags for the macOS open command
}

// viewers registry maps viewer names to platform-specific launch paths
var viewers = map[string]map[string][]launchPath{
	"zathura": {
		"linux": {{path: "zathura"}},
	},
	"evince": {
		"linux": {{path: "evince"}},
	},
	"okular": {
		"linux": {{path: "okular"}},
	},
	"skim": {
		"darwin": {{path: "open-a:Skim"}},
	},
	"preview": {
		"darwin": {{path: "open-a:Preview"}},
	},
}

// candidateViewers defines the preferred viewer order for each platform.
// Windows has no CLI-installable favorite worth probing, the system
// default association handles it.
var candidateViewers = map[string][]string{
	"darwin": {"skim", "preview"},
	"linux":  {"zathura", "evince", "okular"},
}

// Launcher opens document URLs in an external PDF viewer
type Launcher struct {
	command  string   // configured viewer command, empty for auto-detection
	args     []string // additional arguments for the viewer
	fragment string   // URL fragment appended when the source has none, e.g. "toolbar=0"
	logger   *slog.Logger
}

// NewLauncher creates a Launcher for the given viewer configuration
func NewLauncher(command string, args []string, fragment string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		fragment: fragment,
		logger:   logger,
	}
}

// Open launches the document URL in the configured viewer, a detected
// candidate viewer, or the system default handler, in that order
func (l *Launcher) Open(sourceURL string) error {
	target := l.withFragment(sourceURL)

	// Tier 1: user configured a specific viewer
	if l.command != "" {
		l.logger.Info("using configured viewer", "command", l.command)
		return l.openConfigured(target)
	}

	// Tier 2: try the candidate chain for this platform
	if name, err := detectAndOpen(target, l.logger); err == nil {
		l.logger.Info("opened with detected viewer", "viewer", name)
		return nil
	}

	// Tier 3: fall back to the system default handler
	l.logger.Info("no candidate viewers found, using system default")
	return l.openDefault(target)
}

// withFragment appends the configured fragment to URLs that carry none.
// Sources that already specify a fragment keep theirs.
func (l *Launcher) withFragment(sourceURL string) string {
	if l.fragment == "" || strings.Contains(sourceURL, "#") {
		return sourceURL
	}
	if _, err := url.Parse(sourceURL); err != nil {
		return sourceURL
	}
	return sourceURL + "#" + l.fragment
}

// openConfigured launches the document using the configured viewer command
func (l *Launcher) openConfigured(target string) error {
	args := append([]string{}, l.args...)

	// On macOS a GUI app name that is not in PATH goes through 'open -a'
	if runtime.GOOS == "darwin" {
		if _, err := exec.LookPath(l.command); err != nil {
			return tryOpenWithApp(l.command, target, nil)
		}
	}

	args = append(args, target)
	l.logger.Info("launching viewer", "command", l.command, "args", args)
	return exec.Command(l.command, args...).Start()
}

// detectAndOpen tries candidate viewers in order, returning the name of
// the viewer that accepted the document
func detectAndOpen(target string, logger *slog.Logger) (string, error) {
	candidates, ok := candidateViewers[runtime.GOOS]
	if !ok {
		return "", fmt.Errorf("no candidate viewers for platform %s", runtime.GOOS)
	}

	for _, name := range candidates {
		paths, ok := viewers[name][runtime.GOOS]
		if !ok {
			continue
		}

		for _, lp := range paths {
			var err error
			if strings.HasPrefix(lp.path, "open-a:") {
				appName := strings.TrimPrefix(lp.path, "open-a:")
				err = tryOpenWithApp(appName, target, lp.openFlags)
			} else {
				err = tryOpenWithCommand(lp.path, target)
			}
			if err == nil {
				return name, nil
			}
			logger.Debug("launch path not available", "viewer", name, "path", lp.path, "error", err)
		}
	}

	return "", fmt.Errorf("no candidate viewers found")
}

// tryOpenWithApp opens the target with a specific macOS app using "open -a".
// Run() waits for the open command so a missing app surfaces as an error.
func tryOpenWithApp(appName string, target string, openFlags []string) error {
	cmdArgs := make([]string, len(openFlags))
	copy(cmdArgs, openFlags)
	cmdArgs = append(cmdArgs, "-a", appName, target)
	return exec.Command("open", cmdArgs...).Run()
}

// tryOpenWithCommand launches the target with a CLI command when it exists
// in PATH. Starts async without waiting for the viewer to exit.
func tryOpenWithCommand(command string, target string) error {
	if _, err := exec.LookPath(command); err != nil {
		return err
	}
	return exec.Command(command, target).Start()
}

// openDefault hands the URL to the operating system's default handler
func (l *Launcher) openDefault(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", target)
	return cmd.Start()
}
