// Command zenfi is the terminal wallet client. It keeps a per-device sqlite
// state file so balances and payment status survive restarts and render
// instantly, then reconciles against the server in the background.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"zenfi-wallet/pkg/client"
	"zenfi-wallet/pkg/clientstate"
	"zenfi-wallet/pkg/logger"
	"zenfi-wallet/pkg/reconcile"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	keySessionToken = "session:token"
	keySessionOwner = "session:owner_id"
)

type app struct {
	serverURL string
	statePath string
	verbose   bool

	store *clientstate.Store
	api   *client.Client
	log   zerolog.Logger
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "zenfi-state.db"
	}
	return filepath.Join(home, ".zenfi", "state.db")
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.log = logger.New(level, true)

	if err := os.MkdirAll(filepath.Dir(a.statePath), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	store, err := clientstate.Open(a.statePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	a.store = store

	a.api = client.New(a.serverURL, a.log)
	if raw, err := store.Get(keySessionToken); err == nil && raw != nil {
		a.api.SetToken(string(raw))
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// ownerKey returns the profile id of the logged-in session, used to scope
// cached records to this account on a shared device.
func (a *app) ownerKey() (string, error) {
	raw, err := a.store.Get(keySessionOwner)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", errors.New("not logged in, run: zenfi login")
	}
	return string(raw), nil
}

func (a *app) saveSession(s *client.Session) error {
	if err := a.store.Set(keySessionToken, []byte(s.Token)); err != nil {
		return err
	}
	return a.store.Set(keySessionOwner, []byte(s.Profile.ID))
}

func (a *app) syncer(ownerKey string) *reconcile.Syncer {
	cache := reconcile.NewCacheStore(a.store)
	return reconcile.NewSyncer(a.api, cache, ownerKey, a.log)
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:               "zenfi",
		Short:             "ZenFi wallet terminal client",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd, args)
		},
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", "http://localhost:8080", "wallet API base URL")
	root.PersistentFlags().StringVar(&a.statePath, "state", defaultStatePath(), "path to the local state file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.balanceCmd(),
		a.claimCmd(),
		a.paymentsCmd(),
		a.ackCmd(),
		a.watchCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			s, err := a.api.Login(ctx, email, password)
			if err != nil {
				return err
			}
			// A different account on the same device must not inherit the
			// previous account's cached records.
			if prev, _ := a.store.Get(keySessionOwner); prev != nil && string(prev) != s.Profile.ID {
				if err := a.store.Reset(); err != nil {
					return err
				}
			}
			if err := a.saveSession(s); err != nil {
				return err
			}
			fmt.Printf("logged in as %s (balance: %d)\n", s.Profile.Email, s.Profile.Balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and wipe local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Reset(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet balance (cached value if offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			s := a.syncer(owner)
			balance := s.Refresh(ctx)
			if pending := s.PendingDeltas(); pending > 0 {
				fmt.Printf("%d (syncing %d change(s))\n", balance, pending)
				return nil
			}
			fmt.Println(balance)
			return nil
		},
	}
}

func (a *app) claimCmd() *cobra.Command {
	var amount int64
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim the daily reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			// One key per owner per UTC day: retries and repeat invocations
			// resolve to the same server-side claim.
			key := fmt.Sprintf("claim-%s-%s", owner, time.Now().UTC().Format("2006-01-02"))

			s := a.syncer(owner)
			if err := s.Apply(ctx, key, amount); err != nil {
				return err
			}
			if err := a.store.SetLastClaimAt(time.Now()); err != nil {
				a.log.Warn().Err(err).Msg("could not record claim time")
			}
			if pending := s.PendingDeltas(); pending > 0 {
				fmt.Printf("claimed (pending sync), balance: %d\n", s.Display())
				return nil
			}
			fmt.Printf("claimed, balance: %d\n", s.Display())
			return nil
		},
	}
	// Matches the server's claim.reward_amount default so the optimistic
	// delta agrees with the credited amount.
	cmd.Flags().Int64Var(&amount, "amount", 10000, "expected reward amount")
	return cmd
}

func (a *app) paymentsCmd() *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List submitted payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.ownerKey(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pg, err := a.api.ListPayments(ctx, page, pageSize)
			if err != nil {
				return err
			}
			if len(pg.Items) == 0 {
				fmt.Println("no payments")
				return nil
			}
			for _, p := range pg.Items {
				line := fmt.Sprintf("%s  %8d  %-8s  %s", p.ID, p.Amount, p.Status, p.CreatedAt)
				if p.RejectionReason != nil {
					line += "  (" + *p.RejectionReason + ")"
				}
				fmt.Println(line)
			}
			fmt.Printf("page %d/%d (%d total)\n", pg.Page, pg.TotalPages, pg.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")
	return cmd
}

func (a *app) ackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge the latest reviewed payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			cache := reconcile.NewCacheStore(a.store)
			acks := reconcile.NewAckTracker(a.store)
			l := reconcile.NewListener(cache, acks, owner, nil, a.log)

			state := l.State()
			if state.Latest == nil {
				p, err := a.api.LatestPayment(ctx)
				if err != nil {
					return err
				}
				if p == nil {
					return errors.New("no payment to acknowledge")
				}
				l.Seed(paymentToRecord(p))
				state = l.State()
			}
			if !state.NeedsAck {
				fmt.Println("nothing awaiting acknowledgement")
				return nil
			}

			if err := a.api.AcknowledgePayment(ctx, state.Latest.ID); err != nil {
				return err
			}
			l.Acknowledge()
			fmt.Printf("acknowledged %s (%s)\n", state.Latest.ID, state.Latest.Status)
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live payment and balance updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cache := reconcile.NewCacheStore(a.store)
			acks := reconcile.NewAckTracker(a.store)
			onChange := func(rec reconcile.PaymentRecord, tr reconcile.Transition) {
				fmt.Printf("payment %s: %s -> %s\n", rec.ID, tr.From, tr.To)
			}
			l := reconcile.NewListener(cache, acks, owner, onChange, a.log)
			s := a.syncer(owner)

			// Seed from the authoritative read so a change that happened
			// while offline is not missed.
			seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
			if p, err := a.api.LatestPayment(seedCtx); err == nil && p != nil {
				l.Seed(paymentToRecord(p))
			}
			seedCancel()
			fmt.Printf("balance: %d\n", s.Refresh(ctx))

			for ctx.Err() == nil {
				if err := a.watchOnce(ctx, l, s); err != nil {
					a.log.Warn().Err(err).Msg("stream disconnected, retrying")
				}
				if err := sleepCtx(ctx, 3*time.Second); err != nil {
					break
				}
			}
			return nil
		},
	}
}

// watchOnce runs one stream connection, demuxing payment events into the
// listener and balance confirmations into the syncer's ledger.
func (a *app) watchOnce(ctx context.Context, l *reconcile.Listener, s *reconcile.Syncer) error {
	events, err := a.api.Stream(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errors.New("stream closed")
			}
			if ev.Payment != nil {
				l.Apply(*ev.Payment)
			}
			if ev.Balance != nil {
				fmt.Printf("balance: %d\n", s.Refresh(ctx))
			}
		}
	}
}

func paymentToRecord(p *client.Payment) reconcile.PaymentRecord {
	rec := reconcile.PaymentRecord{
		ID:      p.ID,
		OwnerID: p.ProfileID,
		Amount:  p.Amount,
		Status:  reconcile.Status(p.Status),
	}
	if p.ReceiptURL != nil {
		rec.ReceiptURL = *p.ReceiptURL
	}
	if p.RejectionReason != nil {
		rec.RejectionReason = *p.RejectionReason
	}
	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
