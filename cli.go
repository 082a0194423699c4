package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"port51/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run the LED demo
	bitsMode                // Evaluate a bit primitive
	stateMode               // Dump port state
	configMode              // Show or save configuration
	remoteMode              // Control a running demo
	versionMode             // Show port51 version
)

type (
	CLI struct {
		Run     Run       `cmd:"" help:"Run the LED demo. (default command)" default:"withargs"`
		Bits    Bits      `cmd:"" help:"Evaluate a bit manipulation primitive."`
		State   State     `cmd:"" help:"Print the port state as JSON."`
		Conf    ConfigCmd `cmd:"" name:"config" help:"Print or save the configuration."`
		Remote  Remote    `cmd:"" help:"Control a demo started with run --port."`
		Version Version   `cmd:"" help:"Show port51 version."`

		Log        logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		ConfigPath string     `name:"config" help:"${config_help}" type:"path" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		Cycles   int      `name:"cycles" help:"Number of demo cycles, 0 loops forever. (default from config)" default:"-1"`
		Extended bool     `name:"extended" help:"Play all the animations in each cycle."`
		Fast     bool     `name:"fast" help:"Run on a virtual clock, delays return immediately."`
		Mode     string   `name:"mode" help:"Delay implementation: loop or timer. (default from config)"`
		Show     bool     `name:"show" help:"Print the LEDs after each change."`
		Press    []string `name:"press" help:"${press_help}" placeholder:"B@T[+D]"`

		Trace      *outfile `name:"trace" help:"Write port writes as JSON lines." placeholder:"FILE|stdout|stderr"`
		Probe      *outfile `name:"probe" help:"${probe_help}" placeholder:"FILE|stdout"`
		ProbePin   uint     `name:"probe-pin" help:"LED pin recorded by --probe." default:"0"`
		SampleRate int      `name:"sample-rate" help:"Sample rate of the --probe recording." default:"44100"`
		CPUProfile string   `name:"cpuprofile" help:"Write CPU profile to file." type:"path"`
		Port       int      `name:"port" help:"Serve remote control over RPC on this port."`
	}

	Bits struct {
		Op    string `arg:"" help:"${bits_op_help}" enum:"set,clear,flip,toggle,get,test,setmask,clearmask,rotl,rotr,upper,lower,combine"`
		Value string `arg:"" help:"Byte value, decimal or 0x/0b prefixed."`
		Arg   string `arg:"" optional:"" help:"Bit index, mask, rotation amount or lower nibble."`
	}

	State struct {
		Load  string   `name:"load" help:"Restore a JSON snapshot first." type:"existingfile"`
		Write []string `name:"write" help:"Write a port latch." placeholder:"Pn=VALUE"`
		Press []uint   `name:"press" help:"Hold down button N."`
	}

	ConfigCmd struct {
		Save string `name:"save" help:"Write the configuration to FILE instead of stdout." type:"path" placeholder:"FILE"`
	}

	Remote struct {
		Port int      `arg:"" help:"RPC port of the running demo."`
		Op   string   `arg:"" help:"${remote_op_help}" enum:"state,read,write,press,release"`
		Args []string `arg:"" optional:"" help:"Port name and value, or button number."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":       "Enable logging for specified modules.",
	"config_help":    "Load configuration from TOML file.",
	"press_help":     "Press button B at T for D (100ms by default), ex: 1@2s+300ms.",
	"probe_help":     "Record an LED pin as 16-bit mono PCM.",
	"remote_op_help": "Operation: state, read Pn, write Pn VALUE, press N or release N.",
	"bits_op_help":   "Operation: set, clear, flip|toggle, get|test, setmask, clearmask, rotl, rotr, upper, lower or combine.",
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("port51"),
		kong.Description("8051 port I/O emulator and LED demo."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
}

func parseArgs(args []string) CLI {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cli.mode = commandMode(ctx.Command())
	return cli
}

func commandMode(cmd string) mode {
	name, _, _ := strings.Cut(cmd, " ")
	switch name {
	case "bits":
		return bitsMode
	case "state":
		return stateMode
	case "config":
		return configMode
	case "remote":
		return remoteMode
	case "version":
		return versionMode
	}
	return runMode
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() == "" || strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask
// and enables debug logs for those modules.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	var mask log.ModuleMask
	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}

	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
