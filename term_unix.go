//go:build linux || darwin

package opentui

import "golang.org/x/sys/unix"

// enterRawMode switches the fd to raw mode and returns the previous
// termios for restoration.
func enterRawMode(fd int) (*unix.Termios, error) {
	orig, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, wrapIO(err, "get termios")
	}

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return nil, wrapIO(err, "set raw mode")
	}
	return orig, nil
}

// restoreMode puts the fd back into its saved termios state.
func restoreMode(fd int, state *unix.Termios) error {
	if state == nil {
		return nil
	}
	return wrapIO(unix.IoctlSetTermios(fd, ioctlWriteTermios, state), "restore termios")
}

// queryWinsize reads the terminal size in cells.
func queryWinsize(fd int) (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, wrapIO(err, "query winsize")
	}
	return int(ws.Col), int(ws.Row), nil
}
