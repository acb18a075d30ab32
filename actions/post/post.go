package post

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-instagram-publisher/actions"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/bootstrap"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/sessionfile"
)

// Publisher is the part of the Instagram client the post runner needs.
type Publisher interface {
	SetSettings(settings map[string]any) error
	UserIDFromUsername(ctx context.Context, username string) (string, error)
	SearchLocation(ctx context.Context, query string) ([]instagram.Location, error)
	UploadPhoto(ctx context.Context, path string, opts instagram.PhotoOptions, pr instagram.ProgressReporter) (*instagram.Media, error)
	Comment(ctx context.Context, mediaID, text string) (*instagram.Comment, error)
}

type ClientFactory func(env *bootstrap.Env) Publisher

// PostCommand publishes a photo to the feed.
var PostCommand = NewCommand(func(env *bootstrap.Env) Publisher {
	return env.NewClient()
})

func NewCommand(newClient ClientFactory) *cli.Command {
	return &cli.Command{
		Name:      "post",
		Usage:     "Publish a photo to the feed",
		ArgsUsage: "<session_file> <media_path> <caption>",
		Flags: append(bootstrap.Flags(),
			&cli.StringFlag{
				Name:  "first-comment",
				Usage: "Comment to add right after publishing",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Location name to search for and attach",
			},
			&cli.BoolFlag{
				Name:  "hide-like-count",
				Usage: "Hide like and view counts",
			},
			&cli.StringFlag{
				Name:  "tagged-users",
				Usage: "Comma-separated usernames to tag",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show an upload progress bar on stderr",
			},
		),
		OnUsageError: bootstrap.OnUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return postAction(ctx, cmd, newClient)
		},
	}
}

func postAction(ctx context.Context, cmd *cli.Command, newClient ClientFactory) error {
	if cmd.Args().Len() < 3 {
		return bootstrap.Fail(cmd, result.Invalid("Missing arguments: expected <session_file> <media_path> <caption>"))
	}

	env, err := bootstrap.Setup(cmd)
	if err != nil {
		return bootstrap.Fail(cmd, err)
	}
	defer env.Close()

	media, err := run(ctx, cmd, env, newClient(env))
	if err != nil {
		env.Log.Error().Err(err).Str("error_type", string(result.Classify(err))).Msg("post failed")
		return bootstrap.Fail(cmd, err)
	}

	return bootstrap.Emit(cmd, result.Media{
		Success: true,
		MediaID: media.ID,
		Code:    media.Code,
	})
}

func run(ctx context.Context, cmd *cli.Command, env *bootstrap.Env, client Publisher) (*instagram.Media, error) {
	sessionPath := cmd.Args().Get(0)
	mediaPath := cmd.Args().Get(1)
	caption := cmd.Args().Get(2)

	settings, err := sessionfile.Load(sessionPath)
	if err != nil {
		return nil, err
	}
	if err := client.SetSettings(settings); err != nil {
		return nil, result.InvalidWrap(err, "invalid session")
	}

	opts := instagram.PhotoOptions{
		Caption:      caption,
		Usertags:     resolveUsertags(ctx, env, client, cmd.String("tagged-users")),
		Location:     resolveLocation(ctx, env, client, cmd.String("location")),
		DisableLikes: cmd.Bool("hide-like-count"),
	}

	var pr instagram.ProgressReporter
	var bar *actions.ProgressBar
	if actions.ProgressEnabled(cmd.Bool("progress"), bootstrap.ErrWriter(cmd)) {
		bar = actions.NewProgressBar(bootstrap.ErrWriter(cmd))
		pr = bar
	}

	media, err := client.UploadPhoto(ctx, mediaPath, opts, pr)
	if bar != nil {
		bar.Finish(err == nil)
	}
	if err != nil {
		return nil, err
	}

	env.Log.Info().Str("media_id", media.ID).Str("code", media.Code).Msg("photo published")

	if text := cmd.String("first-comment"); text != "" {
		if _, err := client.Comment(ctx, media.ID, text); err != nil {
			// The post is live; only the comment is lost.
			env.Log.Error().Err(err).Str("media_id", media.ID).Str("code", media.Code).Msg("first comment failed after upload")
			return nil, fmt.Errorf("failed to add first comment: %w", err)
		}
	}

	return media, nil
}

// resolveUsertags turns a comma-separated username list into centered
// usertags. Usernames that cannot be resolved are skipped.
func resolveUsertags(ctx context.Context, env *bootstrap.Env, client Publisher, list string) []instagram.Usertag {
	var tags []instagram.Usertag

	for _, username := range strings.Split(list, ",") {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}

		id, err := client.UserIDFromUsername(ctx, username)
		if err != nil || id == "" {
			env.Log.Warn().Err(err).Str("username", username).Msg("skipping tagged user")
			continue
		}

		tags = append(tags, instagram.Usertag{UserID: id, X: 0.5, Y: 0.5})
	}

	return tags
}

// resolveLocation attaches the first venue matching query, if any.
func resolveLocation(ctx context.Context, env *bootstrap.Env, client Publisher, query string) *instagram.Location {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	venues, err := client.SearchLocation(ctx, query)
	if err != nil {
		env.Log.Warn().Err(err).Str("location", query).Msg("location search failed, posting without location")
		return nil
	}
	if len(venues) == 0 {
		env.Log.Warn().Str("location", query).Msg("no venue found, posting without location")
		return nil
	}

	return &venues[0]
}
