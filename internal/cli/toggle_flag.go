package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Toggle flags are booleans that also take an explicit literal: --copy, --copy=no and --copy off
// all parse.

const (
	toggleTypeName         = "bool"
	toggleTrueLiteral      = "true"
	toggleAcceptedLiterals = "true, false, yes, no, on, off, 1, 0"
	errorToggleValueFormat = "invalid value %q for --%s; accepted values: %s"
	argumentTerminator     = "--"
	longFlagPrefix         = "--"
)

var toggleLiterals = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true,
	"false": false, "f": false, "no": false, "n": false, "off": false, "0": false,
}

func parseToggleLiteral(input string) (bool, bool) {
	literal := strings.ToLower(strings.TrimSpace(input))
	if literal == "" {
		literal = toggleTrueLiteral
	}
	parsed, known := toggleLiterals[literal]
	return parsed, known
}

type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	parsed, known := parseToggleLiteral(input)
	if !known {
		return fmt.Errorf(errorToggleValueFormat, input, value.name, toggleAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeName
}

// registerToggleFlag binds target to a toggle flag on flagSet and resets it to defaultValue.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flag := flagSet.VarPF(&toggleValue{target: target, name: name}, name, "", usage)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = toggleTrueLiteral
}

// joinToggleLiterals rewrites "--name literal" into "--name=literal" for every toggle flag known to
// command or its subcommands, so pflag does not treat the literal as a positional argument.
func joinToggleLiterals(command *cobra.Command, arguments []string) []string {
	toggles := map[string]bool{}
	collectToggleNames(command, toggles)

	joined := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(joined, arguments[index:]...)
		}
		name, isLong := strings.CutPrefix(argument, longFlagPrefix)
		if isLong && toggles[name] && index+1 < len(arguments) {
			if _, known := parseToggleLiteral(arguments[index+1]); known && strings.TrimSpace(arguments[index+1]) != "" {
				joined = append(joined, argument+"="+arguments[index+1])
				index++
				continue
			}
		}
		joined = append(joined, argument)
	}
	return joined
}

func collectToggleNames(command *cobra.Command, toggles map[string]bool) {
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleTypeName {
			toggles[flag.Name] = true
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectToggleNames(child, toggles)
	}
}
