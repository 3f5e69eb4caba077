/*
Package runner plays dialogues on a console.

It bridges a dialoguetree.Director and a terminal (or any reader/writer pair). Console is the
ports.Controller that turns display calls into Frames, Actor is a ports.Speaker that reports
its gestures, and Runner reads player commands until the dialogue ends.

# Key Components

  - Runner: The input loop. Numbers select options, an empty line continues, "s" skips, "q" quits.
  - IOHandler: Decouples how frames are shown and commands are read (text or JSON lines).
  - TextHandler: Styled output for interactive terminals.
  - JSONHandler: One JSON object per frame for tooling and tests.

# Usage

	console := runner.NewConsole(runner.NewTextHandler(os.Stdin, os.Stdout))
	director := dialoguetree.New(console)
	if err := director.Start(ctx, dlg, console.Cast(dlg), false); err != nil {
		log.Fatal(err)
	}
	if err := runner.New(console).Run(ctx, director); err != nil {
		log.Fatal(err)
	}
*/
package runner
