// Package schedule генерирует календарь кругового турнира методом круга
// (circle method): один участник фиксируется, остальные вращаются.
package schedule

// Fixture — одна сгенерированная пара в туре. Round нумеруется с 1.
type Fixture struct {
	HomeTeamID int
	AwayTeamID int
	Round      int
}

// RoundRobin строит круговой календарь для teamIDs. При нечётном числе команд
// добавляется bye, и в каждом туре одна команда отдыхает. При doubleRound
// добавляется второй круг с обменом хозяев и гостей.
func RoundRobin(teamIDs []int, doubleRound bool) []Fixture {
	if len(teamIDs) < 2 {
		return nil
	}

	const bye = 0
	ids := make([]int, len(teamIDs))
	copy(ids, teamIDs)
	if len(ids)%2 != 0 {
		ids = append(ids, bye)
	}

	n := len(ids)
	rounds := n - 1
	perRound := n / 2

	fixtures := make([]Fixture, 0, rounds*perRound)
	for round := 1; round <= rounds; round++ {
		for i := 0; i < perRound; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == bye || away == bye {
				continue
			}
			// Чередование хозяев, чтобы первый в списке не играл все туры дома.
			if round%2 == 0 && i == 0 {
				home, away = away, home
			}
			fixtures = append(fixtures, Fixture{HomeTeamID: home, AwayTeamID: away, Round: round})
		}

		// Вращение: первый элемент на месте, остальные сдвигаются по кругу.
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}

	if doubleRound {
		firstLeg := len(fixtures)
		for i := 0; i < firstLeg; i++ {
			f := fixtures[i]
			fixtures = append(fixtures, Fixture{
				HomeTeamID: f.AwayTeamID,
				AwayTeamID: f.HomeTeamID,
				Round:      f.Round + rounds,
			})
		}
	}
	return fixtures
}
