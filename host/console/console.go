// Package console runs operator commands against one VNH5019 driver.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vnhdrive/core"
)

// ErrQuit is returned by Exec when the operator asks to leave
var ErrQuit = errors.New("quit")

// Console parses command lines and applies them to a driver
type Console struct {
	motor  *core.VNH5019
	out    io.Writer
	logger *zap.SugaredLogger
}

// New creates a console writing replies to out
func New(motor *core.VNH5019, out io.Writer, logger *zap.SugaredLogger) *Console {
	return &Console{
		motor:  motor,
		out:    out,
		logger: logger,
	}
}

// Exec runs one command line. Blank lines are ignored.
func (c *Console) Exec(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "quit", "exit", "q":
		return ErrQuit

	case "help", "?":
		c.printHelp()
		return nil

	case "init":
		if err := c.motor.Init(); err != nil {
			return err
		}
		c.logger.Infow("driver initialized", "pins", c.motor.Pins())
		fmt.Fprintln(c.out, "ok")
		return nil

	case "speed":
		v, err := parseValue(cmd, args)
		if err != nil {
			return err
		}
		if err := c.motor.SetSpeed(v); err != nil {
			return err
		}
		c.logger.Infow("speed set", "speed", v)
		fmt.Fprintln(c.out, "ok")
		return nil

	case "brake":
		v, err := parseValue(cmd, args)
		if err != nil {
			return err
		}
		if err := c.motor.SetBrake(v); err != nil {
			return err
		}
		c.logger.Infow("brake set", "brake", v)
		fmt.Fprintln(c.out, "ok")
		return nil

	case "current":
		ma, err := c.motor.CurrentMilliAmps()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "current_ma=%d\n", ma)
		return nil

	case "faults":
		status, err := c.readFaults()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "fault_a=%t fault_b=%t\n", status.FaultA, status.FaultB)
		return nil

	case "status":
		status, err := c.motor.ReadStatus()
		if err != nil {
			return err
		}
		if status.Faulted() {
			c.logger.Warnw("driver fault", "fault_a", status.FaultA, "fault_b", status.FaultB)
		}
		fmt.Fprintf(c.out, "current_ma=%d fault_a=%t fault_b=%t\n",
			status.CurrentMilliAmps, status.FaultA, status.FaultB)
		return nil

	default:
		return errors.Errorf("unknown command %q (type 'help' for available commands)", cmd)
	}
}

// Run reads commands from in until EOF or quit. Command errors are reported
// to out and do not stop the loop.
func (c *Console) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			break
		}

		err := c.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.logger.Debugw("command failed", "line", scanner.Text(), "error", err)
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return errors.Wrap(scanner.Err(), "reading commands")
}

func (c *Console) readFaults() (core.MotorStatus, error) {
	var status core.MotorStatus
	var err error
	if status.FaultA, err = c.motor.FaultA(); err != nil {
		return status, err
	}
	if status.FaultB, err = c.motor.FaultB(); err != nil {
		return status, err
	}
	return status, nil
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, "Available commands:")
	fmt.Fprintln(c.out, "  init           - Configure pins and PWM")
	fmt.Fprintln(c.out, "  speed <n>      - Drive at n (-1023..1023, sign = direction, 0 = coast)")
	fmt.Fprintln(c.out, "  brake <n>      - Brake with strength |n| (0 = freewheel, 1023 = full)")
	fmt.Fprintln(c.out, "  current        - Read motor current in mA")
	fmt.Fprintln(c.out, "  faults         - Read diagnostic lines")
	fmt.Fprintln(c.out, "  status         - Current and faults")
	fmt.Fprintln(c.out, "  quit/exit/q    - Exit")
}

// parseValue reads the single int16 argument of speed/brake.
// Values beyond 1023 are accepted here and clamped by the driver.
func parseValue(cmd string, args []string) (int16, error) {
	if len(args) != 1 {
		return 0, errors.Errorf("usage: %s <n>", cmd)
	}
	v, err := strconv.ParseInt(args[0], 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "%s value", cmd)
	}
	return int16(v), nil
}
