package model

// FastrTeam maps a current team abbreviation to the one nflfastR used in
// season. Franchises that relocated keep their old code for the seasons
// played in the old city.
func FastrTeam(team string, season int) string {
	switch team {
	case "OAK":
		if season <= 2019 {
			return "OAK"
		}
		return "LV"
	case "LAR":
		if season <= 2015 {
			return "STL"
		}
		return "LA"
	case "LAC":
		if season <= 2016 {
			return "SD"
		}
		return "LAC"
	}
	return team
}
