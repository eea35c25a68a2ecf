package helper

// Command enumerates the operations the helper understands.
type Command int

const (
	CommandCheck Command = iota
	CommandGetProxy
	CommandHandlerExists
	CommandGetFromExtension
	CommandGetFromType
	CommandGetAppDescForScheme
	CommandAppsDialog
	CommandGetOpenFileName
	CommandGetOpenURL
	CommandGetSaveFileName
	CommandGetSaveURL
	CommandGetDirectoryFileName
	CommandGetDirectoryURL
	CommandOpen
	CommandReveal
	CommandRun
	CommandGetDefaultFeedReader
	CommandOpenMail
	CommandOpenNews
	CommandIsDefaultBrowser
	CommandSetDefaultBrowser
	CommandDownloadFinished

	commandCount
)

var commandTokens = [commandCount]string{
	CommandCheck:                "CHECK",
	CommandGetProxy:             "GETPROXY",
	CommandHandlerExists:        "HANDLEREXISTS",
	CommandGetFromExtension:     "GETFROMEXTENSION",
	CommandGetFromType:          "GETFROMTYPE",
	CommandGetAppDescForScheme:  "GETAPPDESCFORSCHEME",
	CommandAppsDialog:           "APPSDIALOG",
	CommandGetOpenFileName:      "GETOPENFILENAME",
	CommandGetOpenURL:           "GETOPENURL",
	CommandGetSaveFileName:      "GETSAVEFILENAME",
	CommandGetSaveURL:           "GETSAVEURL",
	CommandGetDirectoryFileName: "GETDIRECTORYFILENAME",
	CommandGetDirectoryURL:      "GETDIRECTORYURL",
	CommandOpen:                 "OPEN",
	CommandReveal:               "REVEAL",
	CommandRun:                  "RUN",
	CommandGetDefaultFeedReader: "GETDEFAULTFEEDREADER",
	CommandOpenMail:             "OPENMAIL",
	CommandOpenNews:             "OPENNEWS",
	CommandIsDefaultBrowser:     "ISDEFAULTBROWSER",
	CommandSetDefaultBrowser:    "SETDEFAULTBROWSER",
	CommandDownloadFinished:     "DOWNLOADFINISHED",
}

var commandsByToken = func() map[string]Command {
	m := make(map[string]Command, commandCount)
	for i, token := range commandTokens {
		if token == "" {
			panic("helper: command without wire token")
		}
		m[token] = Command(i)
	}
	return m
}()

// String returns the wire token of c.
func (c Command) String() string {
	if c < 0 || c >= commandCount {
		return "UNKNOWN"
	}
	return commandTokens[c]
}

// ParseCommand maps a wire token to its Command. Matching is exact and
// case-sensitive.
func ParseCommand(token string) (Command, bool) {
	c, ok := commandsByToken[token]
	return c, ok
}

// Commands returns every known command in wire order.
func Commands() []Command {
	all := make([]Command, 0, commandCount)
	for c := Command(0); c < commandCount; c++ {
		all = append(all, c)
	}
	return all
}
