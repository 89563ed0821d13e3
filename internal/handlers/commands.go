package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/arviel/mediactl/internal/player"
	"github.com/arviel/mediactl/internal/repository"
	"github.com/arviel/mediactl/internal/utils"
)

func (c *Console) dispatch(ctx context.Context, p *player.Player, cmd string, args []string) {
	switch cmd {
	case "load":
		c.cmdLoad(ctx, p, strings.Join(args, " "))
	case "play":
		if err := p.Play(ctx); err != nil {
			c.printf("play: %v", err)
		}
	case "pause":
		if err := p.Pause(ctx); err != nil {
			c.printf("pause: %v", err)
		}
	case "toggle":
		c.cmdToggle(ctx, p)
	case "seek":
		c.cmdSeek(p, args)
	case "live":
		p.SeekToLiveEdge()
	case "volume":
		c.cmdVolume(p, args)
	case "mute":
		p.Mute()
	case "unmute":
		p.Unmute()
	case "loop":
		c.cmdLoop(p, args)
	case "fullscreen":
		c.cmdFullscreen(ctx, p, args)
	case "poster":
		c.cmdPoster(p, args)
	case "idle":
		c.cmdIdle(p, args)
	case "prefer-native":
		c.cmdPreferNative(p, args)
	case "preset":
		c.cmdPreset(ctx, p, args)
	case "status":
		c.cmdStatus(p)
	case "help":
		c.printf("commands: load play pause toggle seek live volume mute unmute loop fullscreen poster idle prefer-native preset status quit")
	default:
		c.printf("unknown command %q", cmd)
	}
}

func (c *Console) cmdLoad(ctx context.Context, p *player.Player, query string) {
	if query == "" {
		c.printf("usage: load <url or search>")
		return
	}
	srcs, poster, err := c.resolver.Resolve(ctx, query)
	if err != nil {
		c.printf("load: %v", err)
		return
	}
	p.SetSources(srcs)
	c.printf("loaded %d source(s)", len(srcs))

	if poster != "" && p.Store().CanLoadPoster().Get() {
		path, err := c.resolver.CachePoster(ctx, poster)
		if err != nil {
			c.printf("artwork: %v", err)
		} else if path != "" {
			c.printf("artwork: %s", path)
		}
	}
}

func (c *Console) cmdToggle(ctx context.Context, p *player.Player) {
	var err error
	if p.Store().Paused().Get() {
		err = p.Play(ctx)
	} else {
		err = p.Pause(ctx)
	}
	if err != nil {
		c.printf("toggle: %v", err)
	}
}

// cmdSeek accepts an absolute position (seconds or 1h2m3s) or a +/-
// relative offset.
func (c *Console) cmdSeek(p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("usage: seek <position> | seek +10 | seek -10")
		return
	}
	arg := args[0]
	rel := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")
	var target float64
	if v, err := strconv.ParseFloat(arg, 64); err == nil {
		target = v
	} else if !rel {
		target = float64(utils.ParseDurationString(arg))
	} else {
		c.printf("seek: bad offset %q", arg)
		return
	}
	if rel {
		target = p.Store().CurrentTime().Get() + target
	}
	if err := p.Seek(target); err != nil {
		c.printf("seek: %v", err)
	}
}

func (c *Console) cmdVolume(p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("volume is %d", int(p.Store().Volume().Get()*100))
		return
	}
	v, err := strconv.Atoi(args[0])
	if err != nil || v < 0 || v > 100 {
		c.printf("usage: volume <0-100>")
		return
	}
	p.SetVolume(float64(v) / 100)
}

func (c *Console) cmdLoop(p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("loop is %s", onOff(p.Looping()))
		return
	}
	p.SetLoop(args[0] == "on")
}

func (c *Console) cmdFullscreen(ctx context.Context, p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("fullscreen is %s", onOff(p.Store().Fullscreen().Get()))
		return
	}
	var err error
	if args[0] == "on" {
		err = p.EnterFullscreen(ctx)
	} else {
		err = p.ExitFullscreen(ctx)
	}
	if err != nil {
		c.printf("fullscreen: %v", err)
	}
}

func (c *Console) cmdPoster(p *player.Player, args []string) {
	if len(args) == 1 && args[0] == "off" {
		p.HidePoster()
		return
	}
	p.ShowPoster()
}

func (c *Console) cmdIdle(p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("usage: idle pause|resume")
		return
	}
	if args[0] == "pause" {
		p.PauseIdleTracking()
	} else {
		p.ResumeIdleTracking()
	}
}

func (c *Console) cmdPreferNative(p *player.Player, args []string) {
	if len(args) != 1 {
		c.printf("usage: prefer-native on|off")
		return
	}
	p.SetPreferNativeHLS(args[0] == "on")
}

func (c *Console) cmdPreset(ctx context.Context, p *player.Player, args []string) {
	if c.repo == nil || len(args) == 0 {
		c.printf("usage: preset save <name> <query> | preset load <name> | preset list")
		return
	}
	switch args[0] {
	case "save":
		if len(args) < 3 {
			c.printf("usage: preset save <name> <query>")
			return
		}
		err := c.repo.AddPreset(ctx, &repository.Preset{
			SessionID: consoleSession,
			Name:      args[1],
			Query:     strings.Join(args[2:], " "),
		})
		if err != nil {
			c.printf("preset save: %v", err)
		}
	case "load":
		if len(args) != 2 {
			c.printf("usage: preset load <name>")
			return
		}
		pr, err := c.repo.FindPreset(ctx, consoleSession, args[1])
		if err != nil {
			c.printf("preset load: %v", err)
			return
		}
		c.cmdLoad(ctx, p, pr.Query)
	case "list":
		prs, err := c.repo.ListPresets(ctx, consoleSession)
		if err != nil {
			c.printf("preset list: %v", err)
			return
		}
		for _, pr := range prs {
			c.printf("%s\t%s", pr.Name, pr.Query)
		}
	default:
		c.printf("usage: preset save|load|list")
	}
}

func (c *Console) cmdStatus(p *player.Player) {
	st := p.Store()
	c.printf("source:      %s", st.Source().Get().String())
	c.printf("media type:  %s", st.MediaType().Get().String())
	c.printf("stream type: %s", st.StreamType().Get())
	if l := st.Loader().Get(); l != nil {
		c.printf("loader:      %s", l.Name())
	}
	if prov := st.Provider().Get(); prov != nil {
		c.printf("provider:    %s", prov.Name())
	}
	c.printf("paused:      %v", st.Paused().Get())
	c.printf("time:        %s / %s",
		utils.PrettyTime(int(st.CurrentTime().Get())), utils.PrettyTime(int(st.Duration().Get())))
	c.printf("volume:      %d muted=%v", int(st.Volume().Get()*100), st.Muted().Get())
	if st.Live().Get() {
		c.printf("live:        at edge=%v", st.AtLiveEdge(2))
	}
	c.printf("flags:       canPlay=%v canSeek=%v seeking=%v ended=%v fullscreen=%v loop=%v",
		st.CanPlay().Get(), st.CanSeek().Get(), st.Seeking().Get(),
		st.Ended().Get(), st.Fullscreen().Get(), p.Looping())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
