package story

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-instagram-publisher/actions"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/bootstrap"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/sessionfile"
)

// StoryUploader is the part of the Instagram client the story runner needs.
type StoryUploader interface {
	SetSettings(settings map[string]any) error
	UploadPhotoStory(ctx context.Context, path, caption string, pr instagram.ProgressReporter) (*instagram.Media, error)
	UploadVideoStory(ctx context.Context, path, caption string, pr instagram.ProgressReporter) (*instagram.Media, error)
}

type ClientFactory func(env *bootstrap.Env) StoryUploader

// StoryCommand publishes a photo or video story.
var StoryCommand = NewCommand(func(env *bootstrap.Env) StoryUploader {
	return env.NewClient()
})

func NewCommand(newClient ClientFactory) *cli.Command {
	return &cli.Command{
		Name:      "story",
		Usage:     "Publish a photo (.jpg, .jpeg, .png) or video (.mp4, .mov) story",
		ArgsUsage: "<session_file> <media_path>",
		Flags: append(bootstrap.Flags(),
			&cli.StringFlag{
				Name:  "caption",
				Usage: "Story caption",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show an upload progress bar on stderr",
			},
		),
		OnUsageError: bootstrap.OnUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return storyAction(ctx, cmd, newClient)
		},
	}
}

func storyAction(ctx context.Context, cmd *cli.Command, newClient ClientFactory) error {
	if cmd.Args().Len() < 2 {
		return bootstrap.Fail(cmd, result.Invalid("Missing arguments: expected <session_file> <media_path>"))
	}

	env, err := bootstrap.Setup(cmd)
	if err != nil {
		return bootstrap.Fail(cmd, err)
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(ctx, env.Config.Upload.ConfigureTimeout)
	defer cancel()

	media, err := run(ctx, cmd, env, newClient(env))
	if err != nil {
		env.Log.Error().Err(err).Str("error_type", string(result.Classify(err))).Msg("story failed")
		return bootstrap.Fail(cmd, err)
	}

	return bootstrap.Emit(cmd, result.Media{
		Success: true,
		MediaID: media.ID,
		Code:    media.Code,
	})
}

func run(ctx context.Context, cmd *cli.Command, env *bootstrap.Env, client StoryUploader) (*instagram.Media, error) {
	sessionPath := cmd.Args().Get(0)
	mediaPath := cmd.Args().Get(1)
	caption := cmd.String("caption")

	settings, err := sessionfile.Load(sessionPath)
	if err != nil {
		return nil, err
	}
	if err := client.SetSettings(settings); err != nil {
		return nil, result.InvalidWrap(err, "invalid session")
	}

	kind := instagram.StoryKindOf(mediaPath)

	var upload func(context.Context, string, string, instagram.ProgressReporter) (*instagram.Media, error)
	switch kind {
	case instagram.StoryPhoto:
		upload = client.UploadPhotoStory
	case instagram.StoryVideo:
		upload = client.UploadVideoStory
	default:
		return nil, result.Invalid("Unsupported media type")
	}

	env.Log.Info().Stringer("kind", kind).Str("path", mediaPath).Msg("uploading story")

	var pr instagram.ProgressReporter
	var bar *actions.ProgressBar
	if actions.ProgressEnabled(cmd.Bool("progress"), bootstrap.ErrWriter(cmd)) {
		bar = actions.NewProgressBar(bootstrap.ErrWriter(cmd))
		pr = bar
	}

	media, err := upload(ctx, mediaPath, caption, pr)
	if bar != nil {
		bar.Finish(err == nil)
	}
	if err != nil {
		return nil, err
	}

	return media, nil
}
