package cli

import (
	"context"
	"fmt"

	"github.com/calvinalkan/kpi-tracker/internal/refdata"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
)

// LoginCmd returns the login command.
func LoginCmd(a *app) *Command {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.Bool("remember", false, "Offer this user as the default at the next login")
	fs.Bool("forget", false, "Clear the remembered user")

	return &Command{
		Flags: fs,
		Usage: "login [user] [flags]",
		Short: "Log in as an enabled user",
		Long: `Log in as an enabled user, given by id, login id, employee id or name.
Without an argument the enabled users are listed and one is prompted for; an
empty answer picks the remembered user.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			remember, _ := fs.GetBool("remember")
			forget, _ := fs.GetBool("forget")

			return execLogin(ctx, o, a, args, remember, forget)
		},
	}
}

func execLogin(ctx context.Context, o *IO, a *app, args []string, remember, forget bool) error {
	sess, err := a.session()
	if err != nil {
		return err
	}

	if forget {
		err = sess.Forget()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			o.Println("Forgot remembered user")

			return nil
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	users, err := st.Users(ctx)
	if err != nil {
		return fmt.Errorf("fetching users: %w", err)
	}

	var query string
	if len(args) > 0 {
		query = args[0]
	} else {
		query, err = promptUser(o, a, users, sess.Remembered())
		if err != nil {
			return err
		}
	}

	u, err := refdata.FindUser(users, query)
	if err != nil {
		return err
	}

	err = sess.Login(u, remember, a.now())
	if err != nil {
		return err
	}

	role := ""
	if u.IsAdmin {
		role = " [admin]"
	}

	o.Println("Logged in as " + userLabel(u) + role)

	return nil
}

func promptUser(o *IO, a *app, users []refdata.User, remembered string) (string, error) {
	names := make([]string, 0, len(users))

	for _, u := range users {
		o.ErrPrintln("  " + userLabel(u))
		names = append(names, u.Name)
	}

	label := "User: "

	if remembered != "" {
		if u, err := refdata.FindUser(users, remembered); err == nil {
			label = fmt.Sprintf("User [%s]: ", u.Name)
		}
	}

	answer, err := a.ask(o, label, names)
	if err != nil {
		return "", err
	}

	if answer == "" {
		if remembered == "" {
			return "", fmt.Errorf("%w: user", errMissingArg)
		}

		return remembered, nil
	}

	return answer, nil
}

// LogoutCmd returns the logout command.
func LogoutCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("logout", flag.ContinueOnError),
		Usage: "logout",
		Short: "Log out (the remembered user is kept)",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			u, ok := sess.Current()
			if !ok {
				o.Println("Not logged in")

				return nil
			}

			err = sess.Logout()
			if err != nil {
				return err
			}

			o.Println("Logged out", u.Name)

			return nil
		},
	}
}

// WhoamiCmd returns the whoami command.
func WhoamiCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("whoami", flag.ContinueOnError),
		Usage: "whoami",
		Short: "Show the logged-in user",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			u, err := sess.Require()
			if err != nil {
				return err
			}

			o.Println("user=" + userLabel(u))
			o.Println("login_id=" + u.LoginID)
			o.Println(fmt.Sprintf("admin=%t", u.IsAdmin))

			if since := sess.Since(); !since.IsZero() {
				o.Println("since=" + humanize.RelTime(since, a.now(), "ago", "from now"))
			}

			return nil
		},
	}
}
