package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/printing"
	"github.com/activecm/iptrack/reporting"
	log "github.com/sirupsen/logrus"
)

// State is a step of the interactive session
type State int

const (
	//MenuDisplayed waits for a destination choice
	MenuDisplayed State = iota
	//AwaitingAddressInput waits for the address to track
	AwaitingAddressInput
	//LookupInProgress runs the sources
	LookupInProgress
	//ResultDisplayed shows the report and its follow up prompts
	ResultDisplayed
	//Exit ends the session
	Exit
)

var stateNames = map[State]string{
	MenuDisplayed:        "menu",
	AwaitingAddressInput: "awaiting-address",
	LookupInProgress:     "lookup",
	ResultDisplayed:      "result",
	Exit:                 "exit",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

type (
	// Looker runs a lookup for one address
	Looker interface {
		Lookup(ctx context.Context, addr address.Address, label string) *report.Report
	}

	// Discoverer finds the public address of this host
	Discoverer interface {
		Discover(ctx context.Context) (address.Address, error)
	}

	// Recorder keeps every report in the durable log
	Recorder interface {
		Append(rep *report.Report) (report.LogEntry, error)
	}

	// Mirror copies a logged entry somewhere else, such as MongoDB
	Mirror interface {
		Mirror(entry report.LogEntry) error
	}

	// Menu drives one interactive session. Lookup, PublicIP and Logbook
	// are required, Mirror and OpenURL may be nil.
	Menu struct {
		Destinations []string
		Lookup       Looker
		PublicIP     Discoverer
		Logbook      Recorder
		Mirror       Mirror

		ExportDir   string
		MapTemplate string
		Style       printing.Style
		ShowBanner  bool
		Version     string

		// OpenURL opens a map link in the browser
		OpenURL func(url string) error

		Log *log.Logger
		Now func() time.Time

		out   io.Writer
		lines chan line
		done  chan struct{}

		state  State
		label  string
		addr   address.Address
		report *report.Report
	}

	line struct {
		text string
		err  error
	}
)

// Run reads answers from in and writes the session to out until the exit
// choice is made, in is exhausted or ctx is cancelled.
func (m *Menu) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if m.Now == nil {
		m.Now = time.Now
	}
	m.out = out
	m.lines = make(chan line)
	m.done = make(chan struct{})
	defer close(m.done)
	go m.readLines(in)

	m.state = MenuDisplayed
	for m.state != Exit {
		next, err := m.step(ctx)
		if err != nil {
			if err != io.EOF && err != context.Canceled {
				return err
			}
			next = Exit
		}
		if m.Log != nil {
			m.Log.WithFields(log.Fields{
				"from": m.state.String(),
				"to":   next.String(),
			}).Debug("menu transition")
		}
		m.state = next
	}
	fmt.Fprintln(m.out, m.Style.Error("\nExiting..."))
	return nil
}

func (m *Menu) step(ctx context.Context) (State, error) {
	switch m.state {
	case MenuDisplayed:
		return m.chooseDestination(ctx)
	case AwaitingAddressInput:
		return m.readAddress(ctx)
	case LookupInProgress:
		m.report = m.Lookup.Lookup(ctx, m.addr, m.label)
		if err := ctx.Err(); err != nil {
			return Exit, err
		}
		return ResultDisplayed, nil
	case ResultDisplayed:
		return m.showResult(ctx)
	}
	return Exit, nil
}

func (m *Menu) chooseDestination(ctx context.Context) (State, error) {
	if m.ShowBanner {
		printing.PrintBanner(m.out, m.Style, m.Version)
	}
	printing.PrintMenu(m.out, m.Style, m.Destinations)

	exit := len(m.Destinations) + 1
	choice, err := m.prompt(ctx, fmt.Sprintf("\nSelect destination (1-%d): ", exit))
	if err != nil {
		return Exit, err
	}

	index, err := strconv.Atoi(choice)
	switch {
	case err == nil && index == exit:
		return Exit, nil
	case err == nil && index >= 1 && index <= len(m.Destinations):
		m.label = m.Destinations[index-1]
		return AwaitingAddressInput, nil
	}
	fmt.Fprintln(m.out, m.Style.Error("Invalid choice!"))
	return MenuDisplayed, nil
}

func (m *Menu) readAddress(ctx context.Context) (State, error) {
	text, err := m.prompt(ctx, fmt.Sprintf("\nEnter IP to track in %s (blank for your IP): ", m.label))
	if err != nil {
		return Exit, err
	}

	if text == "" {
		addr, err := m.PublicIP.Discover(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Exit, ctx.Err()
			}
			fmt.Fprintln(m.out, m.Style.Error("Could not determine your public IP: "+err.Error()))
			return MenuDisplayed, nil
		}
		fmt.Fprintf(m.out, "%s %s\n", m.Style.Label("Using your public IP:"), m.Style.Value(addr.String()))
		m.addr = addr
		return LookupInProgress, nil
	}

	addr, err := address.Validate(text)
	if err != nil {
		fmt.Fprintln(m.out, m.Style.Error("\nInvalid IP address format!"))
		return MenuDisplayed, nil
	}
	m.addr = addr
	return LookupInProgress, nil
}

func (m *Menu) showResult(ctx context.Context) (State, error) {
	rep := m.report
	links := printing.PrintReport(m.out, rep, m.Style, m.MapTemplate)

	if !rep.Address.IsGlobal() {
		return m.offerPublicIP(ctx)
	}

	for _, link := range links {
		yes, err := m.confirm(ctx, "Open "+link+" in the browser? (y/n): ")
		if err != nil {
			return Exit, err
		}
		if yes && m.OpenURL != nil {
			if err := m.OpenURL(link); err != nil {
				fmt.Fprintln(m.out, m.Style.Error("Could not open the browser: "+err.Error()))
			}
		}
	}

	yes, err := m.confirm(ctx, "\nShow traceroute results? (y/n): ")
	if err != nil {
		return Exit, err
	}
	if yes {
		printing.PrintTraceroute(m.out, rep, m.Style)
	}

	m.record(rep)

	yes, err = m.confirm(ctx, "\nExport this data? (y/n): ")
	if err != nil {
		return Exit, err
	}
	if yes {
		m.export(rep)
	}

	if _, err := m.prompt(ctx, "\nPress Enter to continue..."); err != nil {
		return Exit, err
	}
	return MenuDisplayed, nil
}

// offerPublicIP follows a private address report
func (m *Menu) offerPublicIP(ctx context.Context) (State, error) {
	yes, err := m.confirm(ctx, "\nTrack your public IP instead? (y/n): ")
	if err != nil || !yes {
		return m.pause(ctx, err)
	}

	addr, err := m.PublicIP.Discover(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Exit, ctx.Err()
		}
		fmt.Fprintln(m.out, m.Style.Error("Could not determine your public IP: "+err.Error()))
		return m.pause(ctx, nil)
	}
	fmt.Fprintf(m.out, "%s %s\n", m.Style.Label("Your public IP:"), m.Style.Value(addr.String()))

	yes, err = m.confirm(ctx, "Track this IP? (y/n): ")
	if err != nil || !yes {
		return m.pause(ctx, err)
	}
	m.addr = addr
	return LookupInProgress, nil
}

func (m *Menu) pause(ctx context.Context, err error) (State, error) {
	if err != nil {
		return Exit, err
	}
	if _, err := m.prompt(ctx, "\nPress Enter to continue..."); err != nil {
		return Exit, err
	}
	return MenuDisplayed, nil
}

// record appends the report to the log and mirrors the stored entry
func (m *Menu) record(rep *report.Report) {
	entry, err := m.Logbook.Append(rep)
	if err != nil {
		fmt.Fprintln(m.out, m.Style.Error("Failed to log lookup: "+err.Error()))
		if m.Log != nil {
			m.Log.WithFields(log.Fields{
				"ip":    rep.Address.String(),
				"error": err.Error(),
			}).Error("could not append to the lookup log")
		}
		return
	}
	fmt.Fprintln(m.out, m.Style.Success("Lookup logged"))

	if m.Mirror == nil {
		return
	}
	if err := m.Mirror.Mirror(entry); err != nil {
		fmt.Fprintln(m.out, m.Style.Warning("Could not mirror the lookup to MongoDB"))
	}
}

func (m *Menu) export(rep *report.Report) {
	now := m.Now()
	for _, format := range []reporting.Format{reporting.FormatJSON, reporting.FormatCSV} {
		path, err := reporting.ExportSnapshot(m.ExportDir, rep, format, m.MapTemplate, now)
		if err != nil {
			fmt.Fprintf(m.out, "%s\n", m.Style.Error(fmt.Sprintf("Failed to create %s: %v", strings.ToUpper(string(format)), err)))
			continue
		}
		fmt.Fprintln(m.out, m.Style.Success(fmt.Sprintf("%s report saved to %s", strings.ToUpper(string(format)), path)))
	}
}

func (m *Menu) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := m.prompt(ctx, question)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// prompt writes text and waits for the next trimmed line of input
func (m *Menu) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(m.out, m.Style.Prompt(text))
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}

// readLines feeds m.lines until in is exhausted or the session ends. A
// final line without a newline is still delivered.
func (m *Menu) readLines(in io.Reader) {
	defer close(m.lines)
	reader := bufio.NewReader(in)
	for {
		text, err := reader.ReadString('\n')
		if err == io.EOF && text != "" {
			err = nil
		}
		if err != nil {
			if err != io.EOF {
				select {
				case m.lines <- line{err: err}:
				case <-m.done:
				}
			}
			return
		}
		select {
		case m.lines <- line{text: text}:
		case <-m.done:
			return
		}
	}
}
