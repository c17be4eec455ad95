package fotmob

// Envelope fragments for the league, match and team endpoints. Only the
// fields the pipeline reads are declared; the payloads carry far more.

type leagueEnvelope struct {
	Matches struct {
		AllMatches []leagueMatchItem `json:"allMatches"`
	} `json:"matches"`
	Table []tableBlock `json:"table"`
}

type leagueMatchItem struct {
	ID     int64         `json:"id"`
	Round  string        `json:"round"`
	Home   leagueTeamRef `json:"home"`
	Away   leagueTeamRef `json:"away"`
	Status struct {
		UTCTime  string `json:"utcTime"`
		Finished bool   `json:"finished"`
		Reason   struct {
			Long string `json:"long"`
		} `json:"reason"`
	} `json:"status"`
}

type leagueTeamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tableBlock struct {
	Data struct {
		Table struct {
			All []tableRowItem `json:"all"`
		} `json:"table"`
	} `json:"data"`
}

type tableRowItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Idx       int    `json:"idx"`
	Played    int    `json:"played"`
	Wins      int    `json:"wins"`
	Draws     int    `json:"draws"`
	Losses    int    `json:"losses"`
	ScoresStr string `json:"scoresStr"`
	Pts       int    `json:"pts"`
}

type matchEnvelope struct {
	General struct {
		MatchID      string `json:"matchId"`
		MatchTimeUTC string `json:"matchTimeUTCDate"`
	} `json:"general"`
	Header struct {
		Status struct {
			ScoreStr string `json:"scoreStr"`
			Reason   struct {
				Long string `json:"long"`
			} `json:"reason"`
		} `json:"status"`
	} `json:"header"`
	Content struct {
		MatchFacts struct {
			InfoBox struct {
				Stadium struct {
					Name string `json:"name"`
				} `json:"Stadium"`
				Attendance int `json:"Attendance"`
			} `json:"infoBox"`
		} `json:"matchFacts"`
		Lineup struct {
			HomeTeam struct {
				Formation string `json:"formation"`
			} `json:"homeTeam"`
			AwayTeam struct {
				Formation string `json:"formation"`
			} `json:"awayTeam"`
		} `json:"lineup"`
	} `json:"content"`
}

type teamEnvelope struct {
	Overview struct {
		Venue struct {
			Widget struct {
				Name string `json:"name"`
				City string `json:"city"`
			} `json:"widget"`
			StatPairs [][2]any `json:"statPairs"`
		} `json:"venue"`
	} `json:"overview"`
}
