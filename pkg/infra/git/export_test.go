package git

var ParseNumstat = parseNumstat
