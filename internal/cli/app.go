package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/config"
	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/session"
	"github.com/calvinalkan/kpi-tracker/internal/store"
	"github.com/calvinalkan/kpi-tracker/internal/store/gas"
	"github.com/calvinalkan/kpi-tracker/internal/store/local"
	"github.com/calvinalkan/kpi-tracker/internal/store/sheets"

	"github.com/sirupsen/logrus"
)

// app holds what commands share for one invocation.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	env map[string]string
	in  io.Reader
	now func() time.Time

	store store.Store
}

func (a *app) commands() []*Command {
	return []*Command{
		InitCmd(a),
		LoginCmd(a),
		LogoutCmd(a),
		WhoamiCmd(a),
		AddCmd(a),
		LsCmd(a),
		UpdateCmd(a),
		DashboardCmd(a),
		OptionsCmd(a),
		AdminCmd(a),
		PrintConfigCmd(a),
	}
}

// withTimeout bounds one command's store calls by the configured timeout.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.TimeoutValue)
}

// openStore returns the configured record store, creating it on first use.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	opts := store.TableOptions{
		RecordsSheet: a.cfg.RecordsSheet,
		Location:     a.cfg.Location,
		Now:          a.now,
		Logger:       a.log,
	}

	switch a.cfg.Backend {
	case config.BackendGAS:
		a.store = gas.New(a.cfg.GasURL, gas.Options{
			HTTPClient: &http.Client{Timeout: a.cfg.TimeoutValue},
			Location:   a.cfg.Location,
			Logger:     a.log,
		})
	case config.BackendSheets:
		t, err := sheets.Open(ctx, a.cfg.CredentialsAbs, a.cfg.SpreadsheetID, opts)
		if err != nil {
			return nil, err
		}

		a.store = t
	default:
		a.store = local.Open(a.cfg.DataFileAbs, opts)
	}

	a.log.WithField("backend", a.cfg.Backend).Debug("store opened")

	return a.store, nil
}

func (a *app) session() (*session.Session, error) {
	sess, err := session.Load(session.Path(a.env))
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return sess, nil
}

// currentUser returns the logged-in user.
func (a *app) currentUser() (refdata.User, error) {
	sess, err := a.session()
	if err != nil {
		return refdata.User{}, err
	}

	return sess.Require()
}

// freshUser returns the logged-in user with the admin flag the store
// currently holds. A user the store no longer lists keeps only their own
// records.
func (a *app) freshUser(ctx context.Context, st store.Store) (refdata.User, error) {
	u, err := a.currentUser()
	if err != nil {
		return refdata.User{}, err
	}

	users, err := st.Users(ctx)
	if err != nil {
		return refdata.User{}, fmt.Errorf("reading users: %w", err)
	}

	fresh, err := refdata.FindUser(users, u.ID)
	if err != nil {
		a.log.WithField("user", u.Name).Debug("session user no longer listed")
		u.IsAdmin = false

		return u, nil
	}

	return fresh, nil
}

// requireAdmin returns the logged-in user if the store still lists them
// as an enabled admin.
func (a *app) requireAdmin(ctx context.Context, st store.Store) (refdata.User, error) {
	u, err := a.freshUser(ctx, st)
	if err != nil {
		return refdata.User{}, err
	}

	if !u.IsAdmin {
		return refdata.User{}, fmt.Errorf("%w: %s", errAdminOnly, u.Name)
	}

	return u, nil
}

// visibleRecords fetches the records u may see: all of them for admins,
// their own otherwise. u must come from freshUser.
func (a *app) visibleRecords(ctx context.Context, st store.Store, u refdata.User) ([]record.Record, error) {
	records, err := st.FetchRecords(ctx, u.Name, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}

	a.log.WithFields(logrus.Fields{"user": u.Name, "records": len(records)}).Debug("records fetched")

	return records, nil
}

func userLabel(u refdata.User) string {
	return fmt.Sprintf("%s（%s）", u.Name, u.EmpID)
}
