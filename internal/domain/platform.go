package domain

type Platform string

func (p Platform) String() string {
	return string(p)
}

const (
	PlatformHeureka Platform = "heureka"
	PlatformZbozi   Platform = "zbozi"
	PlatformGoogle  Platform = "google"
	PlatformGlami   Platform = "glami"
)

var Platforms = []Platform{
	PlatformHeureka,
	PlatformZbozi,
	PlatformGoogle,
	PlatformGlami,
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformHeureka, PlatformZbozi, PlatformGoogle, PlatformGlami:
		return true
	default:
		return false
	}
}

func (p Platform) DisplayName() string {
	switch p {
	case PlatformHeureka:
		return "Heureka"
	case PlatformZbozi:
		return "Zboží.cz"
	case PlatformGoogle:
		return "Google Shopping"
	case PlatformGlami:
		return "Glami"
	default:
		return "Unknown"
	}
}
