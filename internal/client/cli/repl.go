package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  slots                                 list your slots
  create <title> <start> <end> [offer]  create a slot (times in RFC 3339)
  offer <slot> | busy <slot>            put a slot on offer or take it back
  delete <slot>                         delete a slot
  market                                slots offered by others
  propose <your slot> <their slot>      ask to swap
  incoming | outgoing                   your swap requests
  accept <request> | reject <request>   answer an incoming request
  ping | help | exit`

// Run reads commands from in until EOF, "exit" or ctx is done.
func (a *App) Run(ctx context.Context, in io.Reader) {
	fmt.Fprintf(a.out, "slotswap shell as %s (type 'help' for commands)\n", a.userID)
	scanner := bufio.NewScanner(in)

	for ctx.Err() == nil {
		fmt.Fprint(a.out, "slotswap> ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if parts[0] == "exit" || parts[0] == "quit" {
			fmt.Fprintln(a.out, "Bye!")
			return
		}
		if err := a.execute(ctx, parts[0], parts[1:]); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintln(a.out, helpText)
				continue
			}
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

func (a *App) execute(ctx context.Context, cmd string, args []string) error {
	need := func(n int) error {
		if len(args) < n {
			return errUsage
		}
		return nil
	}

	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "ping":
		if err := a.client.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "OK")
		return nil
	case "slots":
		slots, err := a.client.MySlots(ctx)
		if err != nil {
			return err
		}
		a.printSlots(slots)
		return nil
	case "market":
		slots, err := a.client.Marketplace(ctx)
		if err != nil {
			return err
		}
		a.printSlots(slots)
		return nil
	case "create":
		if err := need(3); err != nil {
			return err
		}
		return a.create(ctx, args)
	case "offer", "busy":
		if err := need(1); err != nil {
			return err
		}
		st := models.SlotOffered
		if cmd == "busy" {
			st = models.SlotBusy
		}
		slot, err := a.client.SetSlotStatus(ctx, args[0], st)
		if err != nil {
			return err
		}
		a.printSlots([]*models.Slot{slot})
		return nil
	case "delete":
		if err := need(1); err != nil {
			return err
		}
		if err := a.client.DeleteSlot(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "deleted")
		return nil
	case "propose":
		if err := need(2); err != nil {
			return err
		}
		req, err := a.client.Propose(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		a.printRequests([]*models.RequestView{{ExchangeRequest: *req}})
		return nil
	case "accept", "reject":
		if err := need(1); err != nil {
			return err
		}
		req, err := a.client.Respond(ctx, args[0], cmd == "accept")
		if err != nil {
			return err
		}
		a.printRequests([]*models.RequestView{{ExchangeRequest: *req}})
		return nil
	case "incoming", "outgoing":
		list := a.client.Incoming
		if cmd == "outgoing" {
			list = a.client.Outgoing
		}
		reqs, err := list(ctx)
		if err != nil {
			return err
		}
		a.printRequests(reqs)
		return nil
	}
	return errUsage
}

func (a *App) create(ctx context.Context, args []string) error {
	start, err := time.Parse(time.RFC3339, args[1])
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, args[2])
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	st := models.SlotBusy
	if len(args) > 3 && args[3] == "offer" {
		st = models.SlotOffered
	}

	slot, err := a.client.CreateSlot(ctx, args[0], start, end, st)
	if err != nil {
		return err
	}
	a.printSlots([]*models.Slot{slot})
	return nil
}

func (a *App) printSlots(slots []*models.Slot) {
	if len(slots) == 0 {
		fmt.Fprintln(a.out, "(none)")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tSTATUS\tOWNER")
	for _, s := range slots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title,
			s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339), s.Status, s.OwnerID)
	}
	w.Flush()
}

func (a *App) printRequests(reqs []*models.RequestView) {
	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "(none)")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tTO\tOFFERED\tDESIRED\tSTATUS")
	for _, r := range reqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.RequesterID, r.RecipientID,
			slotCell(r.OfferedSlotID, r.Offered), slotCell(r.DesiredSlotID, r.Desired), r.Status)
	}
	w.Flush()
}

// slotCell shows a slot by title and time when its details are known and by
// id otherwise.
func slotCell(id string, s *models.SlotSummary) string {
	if s == nil {
		return id
	}
	return fmt.Sprintf("%s [%s, %s] %s", s.Title,
		s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339), id)
}
