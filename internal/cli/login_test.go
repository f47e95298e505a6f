package cli

import (
	"testing"
)

func TestLoginByLoginIDAndName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"login id", "ming", "Logged in as 張小明（E001） [admin]"},
		{"employee id", "E002", "Logged in as 李大華（E002）"},
		{"name", "王美麗", "Logged in as 王美麗（E003）"},
		{"row id", "2", "Logged in as 李大華（E002）"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCLI(t)
			c.Init()

			stdout := c.MustRun("login", tt.query)
			if stdout != tt.want {
				t.Errorf("login %q = %q, want %q", tt.query, stdout, tt.want)
			}
		})
	}
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	stderr := c.MustFail("login", "nobody")
	AssertContains(t, stderr, "user not found")
}

func TestWhoamiAndLogout(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	stderr := c.MustFail("whoami")
	AssertContains(t, stderr, "not logged in")

	c.Login("ming")

	stdout := c.MustRun("whoami")
	AssertContains(t, stdout, "user=張小明（E001）")
	AssertContains(t, stdout, "login_id=ming")
	AssertContains(t, stdout, "admin=true")
	AssertContains(t, stdout, "since=")

	stdout = c.MustRun("logout")
	AssertContains(t, stdout, "Logged out 張小明")

	c.MustFail("whoami")

	stdout = c.MustRun("logout")
	AssertContains(t, stdout, "Not logged in")
}

func TestLoginPromptReadsAnswer(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	stdout, stderr, code := c.RunWithInput("meli\n", "login")
	if code != 0 {
		t.Fatalf("login failed: %s", stderr)
	}

	AssertContains(t, stderr, "張小明（E001）")
	AssertContains(t, stderr, "User: ")
	AssertContains(t, stdout, "Logged in as 王美麗（E003）")
}

func TestLoginPromptDefaultsToRememberedUser(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	c.MustRun("login", "hua", "--remember")
	c.MustRun("logout")

	stdout, stderr, code := c.RunWithInput("\n", "login")
	if code != 0 {
		t.Fatalf("login failed: %s", stderr)
	}

	AssertContains(t, stderr, "User [李大華]: ")
	AssertContains(t, stdout, "Logged in as 李大華（E002）")
}

func TestLoginWithoutRememberClearsRemembered(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	c.MustRun("login", "hua", "--remember")
	c.MustRun("login", "meli")

	_, stderr, code := c.RunWithInput("\n", "login")
	if code == 0 {
		t.Fatal("empty answer without a remembered user should fail")
	}

	AssertContains(t, stderr, "missing argument")
}

func TestLoginForget(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	c.MustRun("login", "hua", "--remember")

	stdout := c.MustRun("login", "--forget")
	AssertContains(t, stdout, "Forgot remembered user")

	stdout, _, _ = c.RunWithInput("\n", "login")
	AssertNotContains(t, stdout, "Logged in")
}

func TestLoginPromptWithoutInput(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Init()

	stderr := c.MustFail("login")
	AssertContains(t, stderr, "no input")
}
