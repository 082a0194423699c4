package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"port51/emu"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
		return
	case remoteMode:
		checkf(remoteMain(os.Stdout, cli.Remote), "remote %s", cli.Remote.Op)
		return
	}

	cfg, err := emu.LoadConfigOrDefault(cli.ConfigPath)
	checkf(err, "failed to load configuration")

	switch cli.mode {
	case runMode:
		checkf(runMain(cli.Run, cfg), "demo failed")
	case bitsMode:
		out, err := evalBits(cli.Bits.Op, cli.Bits.Value, cli.Bits.Arg)
		checkf(err, "bits %s", cli.Bits.Op)
		fmt.Println(out)
	case stateMode:
		checkf(stateMain(os.Stdout, cli.State, cfg), "state failed")
	case configMode:
		checkf(configMain(os.Stdout, cli.Conf, cfg), "config failed")
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("port51", version)
}
