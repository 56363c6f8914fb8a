package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/coordinator"
)

func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <listing>")
	}
	if err := a.gallery.Open(ctx, args[0]); err != nil {
		return err
	}
	return a.List(ctx)
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <path>...")
	}

	report, err := a.gallery.Add(ctx, args)
	switch {
	case errors.Is(err, coordinator.ErrTooManyFiles), errors.Is(err, coordinator.ErrBatchFailed):
		// already reported through the notifier
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %d, local only %d, rejected %d\n",
		report.AcceptedCount, report.FallbackCount, report.RejectedCount())
	if report.FallbackCount > 0 {
		fmt.Fprintln(a.out, "Local-only images are lost on exit; remove them or retry before saving.")
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	st, err := a.gallery.Status()
	if err != nil {
		return err
	}
	if st.ListingID == "" {
		return services.ErrNoListing
	}

	fmt.Fprintf(a.out, "Listing %s (%d/%d)\n", st.ListingID, len(st.Images), st.MaxImages)
	if len(st.Images) == 0 {
		fmt.Fprintln(a.out, "  no images")
		return nil
	}
	for i, ref := range st.Images {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%3d%s %s\n", i, mark, ref)
	}
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rm <i>")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad index %q", args[0])
	}
	if err := a.gallery.Remove(ctx, i); err != nil {
		return err
	}
	return a.List(ctx)
}

func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: mv <from> <to>")
	}
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad index %q", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad index %q", args[1])
	}
	if err := a.gallery.Move(ctx, from, to); err != nil {
		return err
	}
	return a.List(ctx)
}

func (a *App) Save(ctx context.Context, args []string) error {
	force := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "-f":
		force = true
	default:
		return errors.New("usage: save [-f]")
	}

	dropped, err := a.gallery.Save(ctx, force)
	if errors.Is(err, services.ErrUnsaved) {
		fmt.Fprintf(a.out, "Not saved: %v. Remove them or use 'save -f' to drop them.\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	if dropped > 0 {
		fmt.Fprintf(a.out, "Saved, %d local-only image(s) dropped\n", dropped)
	} else {
		fmt.Fprintln(a.out, "Saved")
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.gallery.Status()
	if err != nil {
		return err
	}

	listing := st.ListingID
	if listing == "" {
		listing = "none"
	}
	mode := a.currentMode()
	if mode == "" {
		mode = "unknown"
	}

	fmt.Fprintf(a.out, "Listing: %s\n", listing)
	fmt.Fprintf(a.out, "Images: %d/%d, %d local only, %d free\n",
		len(st.Images), st.MaxImages, st.Images.EphemeralCount(), st.Remaining())
	fmt.Fprintf(a.out, "Server: %s\n", mode)
	return nil
}
