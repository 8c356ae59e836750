// cmd/calc/main.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"calc/internal/config"
	"calc/internal/interp"

	"github.com/mattn/go-isatty"
)

const VERSION = "1.0.0"

const (
	exitSuccess   = 0
	exitErrorRun  = 1
	exitBadOption = 2
	exitAbort     = 30
)

// options collects the flags spec.md §6 names, parsed by hand rather
// than with a flag-package switch table, matching the rest of the
// corpus's hand-rolled CLI dispatch.
type options struct {
	allowCustom   bool // -C
	ignoreEnv     bool // -e
	interactive   bool // -i
	permMask      int  // -m NNN
	classic       bool // -O
	pipeMode      bool // -p
	noRcFiles     bool // -q
	unbuffered    bool // -u
	continueOnErr bool // -c
	quietBanner   bool // -d
	debugLevels   string
	file          string // -f FILE
	stringMode    bool   // -s
	argv          []string
}

func main() {
	opts, exitCode, handled := parseArgs(os.Args[1:])
	if handled {
		os.Exit(exitCode)
	}

	ip := interp.New()
	configureFromOptions(ip, &opts)

	if !opts.quietBanner && !opts.pipeMode {
		fmt.Printf("calc %s\n", VERSION)
	}

	ranFile := false
	if opts.file != "" {
		ranFile = true
		if _, cerr := ip.RunFile(opts.file); cerr != nil {
			fmt.Fprintln(os.Stderr, cerr.Error())
			if cerr.Fatal() {
				os.Exit(exitAbort)
			}
			if !opts.continueOnErr {
				os.Exit(exitErrorRun)
			}
		}
	}

	if ranFile && !opts.interactive {
		os.Exit(exitSuccess)
	}

	runREPL(ip, &opts)
}

// parseArgs hand-parses the verbatim flag set spec.md §6 lists,
// returning (options, process exit code, whether main should exit
// immediately without entering the interpreter).
func parseArgs(args []string) (options, int, bool) {
	var opts options
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			break
		}
		switch a {
		case "-C":
			opts.allowCustom = true
		case "-e":
			opts.ignoreEnv = true
		case "-h":
			printUsage()
			return opts, exitSuccess, true
		case "-i":
			opts.interactive = true
		case "-m":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "calc: -m requires a permission mask argument")
				return opts, exitBadOption, true
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintln(os.Stderr, "calc: -m: invalid permission mask "+args[i])
				return opts, exitBadOption, true
			}
			opts.permMask = n
		case "-n":
			// reserved, accepted and ignored
		case "-O":
			opts.classic = true
		case "-p":
			opts.pipeMode = true
		case "-q":
			opts.noRcFiles = true
		case "-u":
			opts.unbuffered = true
		case "-c":
			opts.continueOnErr = true
		case "-d":
			opts.quietBanner = true
		case "-v":
			fmt.Printf("calc version %s\n", VERSION)
			return opts, exitSuccess, true
		case "-D":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "calc: -D requires calc:resource:user levels")
				return opts, exitBadOption, true
			}
			opts.debugLevels = args[i]
		case "-f":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "calc: -f requires a file argument")
				return opts, exitBadOption, true
			}
			opts.file = args[i]
			opts.stringMode = true
		case "-s":
			opts.stringMode = true
		default:
			fmt.Fprintln(os.Stderr, "calc: unknown option "+a)
			return opts, exitBadOption, true
		}
	}
	opts.argv = args[i:]
	if !opts.ignoreEnv {
		readEnv()
	}
	return opts, exitSuccess, false
}

// readEnv reads CALCPATH/CALCRC/CALCBINDINGS/HOME/PAGER/SHELL/
// CALCHISTFILE/CALCHELP/CALCCUSTOMHELP. The rc-file list, bindings
// file, history file, and help pager name external collaborators this
// module doesn't implement (spec.md §1's line editor/history/help
// pager out-of-scope list). The returned map is not used: no setting,
// CALCPATH included, affects how files are found; RunFile opens each
// path exactly as given.
func readEnv() map[string]string {
	env := map[string]string{}
	for _, name := range []string{
		"CALCPATH", "CALCRC", "CALCBINDINGS", "HOME", "PAGER", "SHELL",
		"CALCHISTFILE", "CALCHELP", "CALCCUSTOMHELP",
	} {
		env[name] = os.Getenv(name)
	}
	return env
}

// configureFromOptions maps parsed flags onto the interpreter's
// config snapshot, mirroring the teacher's -O/-d flag-driven globals.
func configureFromOptions(ip *interp.Interpreter, opts *options) {
	if opts.classic {
		*ip.VM.Config = *config.Legacy()
	}
	if opts.quietBanner {
		ip.VM.Config.ResourceDebug = 0
		ip.VM.Config.TildeOk = false
	}
	if opts.debugLevels != "" {
		parts := strings.SplitN(opts.debugLevels, ":", 3)
		if len(parts) == 3 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				ip.VM.Config.ResourceDebug = n
			}
		}
	}
}

func runREPL(ip *interp.Interpreter, opts *options) {
	interactive := !opts.pipeMode && isatty.IsTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		evalLine(ip, line, opts)
	}
}

// evalLine compiles and runs one typed line, auto-printing its value
// the way a calculator prompt does (spec.md §4.6's "`*`-prefixed
// anonymous function" convention for interactive input).
func evalLine(ip *interp.Interpreter, line string, opts *options) {
	result, cerr := ip.EvalExpr(line, "")
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr.Error())
		if cerr.Fatal() {
			os.Exit(exitAbort)
		}
		return
	}
	if !result.IsNull() {
		fmt.Println(result.String())
	}
}

func printUsage() {
	fmt.Println(`usage: calc [options] [file]
  -C            allow custom (plugin) builtins
  -e            ignore environment variables
  -h            print this help and exit
  -i            go interactive after -f / commands
  -m NNN        permission mask (bit 4 read, bit 2 write, bit 1 exec)
  -n            reserved
  -O            use legacy-default config (classic mode)
  -p            pipe mode (no prompts, close stdin after processing)
  -q            do not run startup rc files
  -u            unbuffered stdin/stdout
  -c            continue on error (within bounds)
  -d            silence startup banner
  -v            print version and exit
  -D a:b:c      sets calc:resource:user debug levels
  -f FILE       execute FILE and implicit -s
  -s            treat remaining argv as strings for argv()`)
}
