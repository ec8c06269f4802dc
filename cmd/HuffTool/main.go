package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"

	"github.com/blanu/huffstream/frame"
	"github.com/blanu/huffstream/huffman"
	"github.com/blanu/huffstream/tablefile"
)

const progName = "HuffTool"
const usageMessageRaw = `
Usage: HuffTool [-d] SUBCOMMAND...

Options:
  -d, --debug
	Log debugging information to standard error.

Subcommands:
  encode [-i IN] [-o OUT] [-chunk N] CODER [KEY=VALUE...]
    Encode IN (default standard input) with the coder named CODER,
    configured by the KEY=VALUE parameters, and write a framed stream
    to OUT (default standard output).

  decode [-i IN] [-o OUT] [-chunk N] CODER [KEY=VALUE...]
    Decode a framed stream produced by encode with the same coder.

  table -o FILE [-maxbits N] SAMPLE
    Build a Huffman code table from the octet frequencies of the file
    SAMPLE and save it as YAML to FILE, for use with the table coder.

  stats CODER [KEY=VALUE...] FILE
    Report how well CODER compresses FILE next to an adaptive Huffman
    baseline.

  coders
    List the available coders.

Coders:
  flat
	Every octet is its own eight-bit code.
  table path=FILE
	Codes read from a YAML table file.
  sample path=FILE [maxbits=N]
	Codes built from the octet frequencies of FILE.
`

type nullWriter struct{}

func (n *nullWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

const logModule = "huffstream/HuffTool"

var log = logging.MustGetLogger(logModule)
var leveledLogBackend logging.LeveledBackend

var ourFlags *flag.FlagSet

func usageMessage() string {
	return strings.TrimLeft(usageMessageRaw, "\n")
}

func usageErrorf(detailFmt string, detailArgs ...interface{}) {
	detail := fmt.Sprintf(detailFmt, detailArgs...)
	fmt.Fprintf(os.Stderr, "%s: %s\n%s", progName, detail, usageMessage())
	os.Exit(64)
}

func exitError(err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName, err.Error())
	os.Exit(1)
}

var argI int = 0

func nextArg(expected string) string {
	if !(argI < ourFlags.NArg()) {
		usageErrorf("not enough arguments; expected %s", expected)
	}
	arg := ourFlags.Arg(argI)
	argI++
	return arg
}

func remainingArgs() []string {
	slice := ourFlags.Args()[argI:]
	argI = ourFlags.NArg()
	return slice
}

func endOfArgs() {
	if argI < ourFlags.NArg() {
		usageErrorf("too many arguments at %d (\"%s\")", argI, ourFlags.Arg(argI))
	}
}

// subcommandFlags makes a silent flag set for a subcommand.  switchToSubcommand must follow parsing.
func subcommandFlags() *flag.FlagSet {
	subFlags := flag.NewFlagSet(progName, flag.ContinueOnError)
	subFlags.Usage = func() {}
	subFlags.SetOutput(&nullWriter{})
	return subFlags
}

func switchToSubcommand(subFlags *flag.FlagSet) {
	argErr := subFlags.Parse(remainingArgs())
	if argErr == flag.ErrHelp {
		io.WriteString(os.Stdout, usageMessage())
		os.Exit(0)
	} else if argErr != nil {
		usageErrorf("%s", argErr.Error())
	}

	ourFlags = subFlags
	argI = 0
}

func coderFromArgs() *huffman.CoderSpec {
	spec, err := huffman.ParseCoderSpec(remainingArgs())
	if err != nil {
		usageErrorf("%s", err.Error())
	}
	if !huffman.CoderAvailable(spec.Name) {
		usageErrorf("unrecognized coder \"%s\"", spec.Name)
	}
	return spec
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// withOutput runs fn on a buffered writer for path, standard output if empty, and flushes and closes it.
func withOutput(path string, fn func(w io.Writer) error) (err error) {
	var file *os.File
	if path == "" || path == "-" {
		file = os.Stdout
	} else {
		file, err = os.Create(path)
		if err != nil {
			return
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()
	}

	wr := bufio.NewWriter(file)
	if err = fn(wr); err != nil {
		return
	}
	err = wr.Flush()
	return
}

func transcodeFromArgs(decoding bool) (func() error, error) {
	subFlags := subcommandFlags()
	inPathPtr := subFlags.String("i", "", "")
	outPathPtr := subFlags.String("o", "", "")
	chunkPtr := subFlags.Int("chunk", frame.DefaultChunkSize, "")
	switchToSubcommand(subFlags)

	if *chunkPtr <= 0 {
		usageErrorf("chunk size must be positive")
	}

	spec := coderFromArgs()
	coder, err := spec.Build()
	if err != nil {
		return nil, err
	}
	opts := frame.Options{ChunkSize: *chunkPtr}

	return func() error {
		in, err := openInput(*inPathPtr)
		if err != nil {
			return err
		}
		defer in.Close()

		if decoding {
			data, err := frame.Read(bufio.NewReader(in), coder, opts)
			if err != nil {
				return err
			}
			log.Infof("decoded %d octets with %s", len(data), spec)
			return withOutput(*outPathPtr, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		log.Infof("encoding %d octets with %s", len(data), spec)
		return withOutput(*outPathPtr, func(w io.Writer) error {
			return frame.Write(w, coder, data, opts)
		})
	}, nil
}

func tableFromArgs() (func() error, error) {
	subFlags := subcommandFlags()
	outPathPtr := subFlags.String("o", "", "")
	maxBitsPtr := subFlags.Int("maxbits", tablefile.DefaultMaxBits, "")
	switchToSubcommand(subFlags)

	samplePath := nextArg("SAMPLE")
	endOfArgs()

	if *outPathPtr == "" {
		usageErrorf("output file must be specified")
	}
	if *maxBitsPtr < 8 || *maxBitsPtr > huffman.MaxPatternBits {
		usageErrorf("maximum code length must be between 8 and %d", huffman.MaxPatternBits)
	}

	return func() error {
		data, err := os.ReadFile(samplePath)
		if err != nil {
			return err
		}

		coding, err := tablefile.FromSample(data, *maxBitsPtr)
		if err != nil {
			return err
		}

		table := tablefile.FromCoding(samplePath, coding, huffman.DefaultEOSPadding)
		if err := table.Save(*outPathPtr); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Table with %d codes saved to: %s\n", len(table.Codes), *outPathPtr)
		return nil
	}, nil
}

func statsFromArgs() (func() error, error) {
	subFlags := subcommandFlags()
	switchToSubcommand(subFlags)

	args := remainingArgs()
	if len(args) < 2 {
		usageErrorf("not enough arguments; expected CODER and FILE")
	}
	path := args[len(args)-1]
	spec, err := huffman.ParseCoderSpec(args[:len(args)-1])
	if err != nil {
		usageErrorf("%s", err.Error())
	}

	coder, err := spec.Build()
	if err != nil {
		return nil, err
	}

	return func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		report, err := measure(coder, data)
		if err != nil {
			return err
		}
		report.write(os.Stdout, spec.String())
		return nil
	}, nil
}

func codersFromArgs() (func() error, error) {
	endOfArgs()
	return func() error {
		for _, name := range huffman.CodersAvailable() {
			fmt.Fprintln(os.Stdout, name)
		}
		return nil
	}, nil
}

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatSpec := "%{level:8s} %{module:-20s} | %{message}"
	formatter := logging.MustStringFormatter(formatSpec)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func main() {
	startLogging()

	var err error
	ourFlags = flag.NewFlagSet(progName, flag.ContinueOnError)
	ourFlags.Usage = func() {}
	ourFlags.SetOutput(&nullWriter{})

	var debugLogging bool
	ourFlags.BoolVar(&debugLogging, "debug", false, "")
	ourFlags.BoolVar(&debugLogging, "d", false, "")

	argErr := ourFlags.Parse(os.Args[1:])
	if argErr == flag.ErrHelp {
		io.WriteString(os.Stdout, usageMessage())
		os.Exit(0)
	} else if argErr != nil {
		usageErrorf("%s", argErr.Error())
	}

	if debugLogging {
		leveledLogBackend.SetLevel(logging.DEBUG, logModule)
		for _, module := range huffman.LogModules {
			leveledLogBackend.SetLevel(logging.DEBUG, module)
		}
	}

	var requestedCommand func() error
	subcommandArg := nextArg("SUBCOMMAND")
	switch subcommandArg {
	default:
		usageErrorf("unrecognized subcommand \"%s\"", subcommandArg)
	case "encode":
		requestedCommand, err = transcodeFromArgs(false)
	case "decode":
		requestedCommand, err = transcodeFromArgs(true)
	case "table":
		requestedCommand, err = tableFromArgs()
	case "stats":
		requestedCommand, err = statsFromArgs()
	case "coders":
		requestedCommand, err = codersFromArgs()
	}

	if err != nil {
		exitError(err)
	}

	err = requestedCommand()
	if err != nil {
		exitError(err)
	}
}
