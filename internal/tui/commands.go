package tui

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdDoc
	cmdSearch
	cmdResult
	cmdOpen
	cmdBack
	cmdBookmark
	cmdNotes
	cmdTags
	cmdBookmarks
	cmdPrecedents
	cmdRerun
	cmdChat
	cmdRefresh
	cmdLogout
	cmdQuit
	cmdHelp
)

type command struct {
	kind commandKind
	arg  string
	n    int
}

var commandNames = map[string]commandKind{
	"doc":        cmdDoc,
	"search":     cmdSearch,
	"result":     cmdResult,
	"open":       cmdOpen,
	"back":       cmdBack,
	"bm":         cmdBookmark,
	"bookmark":   cmdBookmark,
	"notes":      cmdNotes,
	"tags":       cmdTags,
	"bookmarks":  cmdBookmarks,
	"precedents": cmdPrecedents,
	"rerun":      cmdRerun,
	"chat":       cmdChat,
	"refresh":    cmdRefresh,
	"logout":     cmdLogout,
	"q":          cmdQuit,
	"quit":       cmdQuit,
	"help":       cmdHelp,
}

const commandHelp = ":doc ID  :search TEXT  :result N  :open N  :back  :bm [CASE]  :notes TEXT  " +
	":bookmarks  :precedents CASE  :rerun N  :chat  :refresh  :logout  :q"

// parseCommand reads a ":name args" line. Lines without the colon are not
// commands.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return command{}, nil
	}
	name, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	arg = strings.TrimSpace(arg)
	kind, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return command{}, errors.Errorf("unknown command %q", name)
	}
	c := command{kind: kind, arg: arg}

	switch kind {
	case cmdDoc, cmdSearch, cmdPrecedents:
		if arg == "" {
			return command{}, errors.Errorf(":%s needs an argument", name)
		}
	case cmdResult, cmdOpen, cmdRerun:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return command{}, errors.Errorf(":%s needs a number from the list", name)
		}
		c.n = n
	}
	return c, nil
}

// splitTags reads a comma separated tag list. An empty argument clears the
// tags.
func splitTags(arg string) []string {
	tags := []string{}
	for _, tag := range strings.Split(arg, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
