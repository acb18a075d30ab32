package login

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/bootstrap"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/sessionfile"
)

// Authenticator is the part of the Instagram client the login runner needs.
type Authenticator interface {
	Login(ctx context.Context, username, password, verificationCode string) (*instagram.LoginResult, error)
	UserID() int64
	UserInfo(ctx context.Context, userID int64) (*instagram.User, error)
	GetSettings() map[string]any
}

type ClientFactory func(env *bootstrap.Env) Authenticator

// Output is printed on a successful login. Cookies is the session blob the
// post and story runners expect under "cookies" in their session file.
type Output struct {
	Success       bool           `json:"success"`
	UserID        string         `json:"user_id"`
	Username      string         `json:"username"`
	FullName      string         `json:"full_name"`
	ProfilePicURL string         `json:"profile_pic_url"`
	Cookies       map[string]any `json:"cookies"`
}

// LoginCommand is the CLI command for Instagram login
var LoginCommand = NewCommand(func(env *bootstrap.Env) Authenticator {
	return env.NewClient()
})

func NewCommand(newClient ClientFactory) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in and print the session as JSON",
		ArgsUsage: "<username> <password|-> <session_id>",
		Flags: append(bootstrap.Flags(),
			&cli.StringFlag{
				Name:  "2fa",
				Usage: "Two-factor authentication code",
			},
			&cli.StringFlag{
				Name:  "session-out",
				Usage: "Also write the session to this file, ready for post and story",
			},
		),
		OnUsageError: bootstrap.OnUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return loginAction(ctx, cmd, newClient)
		},
	}
}

func loginAction(ctx context.Context, cmd *cli.Command, newClient ClientFactory) error {
	if cmd.Args().Len() < 3 {
		return bootstrap.Fail(cmd, result.Invalid("Missing arguments"))
	}

	env, err := bootstrap.Setup(cmd)
	if err != nil {
		return bootstrap.Fail(cmd, err)
	}
	defer env.Close()

	out, err := run(ctx, cmd, env, newClient(env))
	if err != nil {
		env.Log.Error().Err(err).Str("error_type", string(result.Classify(err))).Msg("login failed")
		return bootstrap.Fail(cmd, err)
	}

	return bootstrap.Emit(cmd, out)
}

func run(ctx context.Context, cmd *cli.Command, env *bootstrap.Env, client Authenticator) (*Output, error) {
	username := strings.TrimSpace(cmd.Args().Get(0))
	password := cmd.Args().Get(1)

	if sessionID := cmd.Args().Get(2); sessionID != "" {
		env.Log.Debug().Str("session_id", sessionID).Msg("session_id argument is ignored")
	}

	if password == "-" {
		var err error
		password, err = readPassword(cmd)
		if err != nil {
			return nil, result.InvalidWrap(err, "failed to read password")
		}
	}

	if username == "" || password == "" {
		return nil, result.Invalid("Missing arguments")
	}

	env.Log.Info().Str("username", username).Msg("logging in")

	if _, err := client.Login(ctx, username, password, cmd.String("2fa")); err != nil {
		return nil, err
	}

	userID := client.UserID()
	user, err := client.UserInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	settings := client.GetSettings()

	if path := cmd.String("session-out"); path != "" {
		if err := sessionfile.Save(path, settings); err != nil {
			return nil, err
		}
		env.Log.Info().Str("path", path).Msg("session saved")
	}

	return &Output{
		Success:       true,
		UserID:        strconv.FormatInt(userID, 10),
		Username:      user.Username,
		FullName:      user.FullName,
		ProfilePicURL: user.ProfilePicURL,
		Cookies:       settings,
	}, nil
}

// readPassword reads the password from stdin, hiding input on a terminal.
func readPassword(cmd *cli.Command) (string, error) {
	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(bootstrap.ErrWriter(cmd), "Password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(bootstrap.ErrWriter(cmd))
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
