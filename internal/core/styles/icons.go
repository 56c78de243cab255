package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBook    = "\uf02d"
	IconUser    = "\uf007"
	IconLink    = "\uf0c1"
	IconLock    = "\uf023"
	IconCheck   = "\uf00c"
	IconWarning = "\uf071"
	IconError   = "\uf057"
	IconInfo    = "\uf05a"
)
