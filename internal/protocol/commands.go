package protocol

// Outbound command builders.  Each returns a line without the CRLF.

// Nick is the first registration command.
func Nick(nick string) string { return "NICK " + nick }

// User is the second registration command, with mode 0 and unused "*".
func User(user, realname string) string { return "USER " + user + " 0 * :" + realname }

// Quit announces a disconnect with a reason.
func Quit(reason string) string { return "QUIT :" + reason }

// Pong answers a PING with its token echoed verbatim.
func Pong(token string) string { return "PONG " + token }

// Join requests membership of a channel.
func Join(channel string) string { return "JOIN " + channel }

// Part leaves a channel.
func Part(channel string) string { return "PART " + channel }

// Privmsg sends text to a channel or nick.  The text is always sent as
// a trailing parameter.
func Privmsg(target, text string) string { return "PRIVMSG " + target + " :" + text }
