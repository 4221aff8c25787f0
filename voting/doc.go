// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package voting implements the election core: eligibility evaluation,
vote casting, results tallying, and turnout analytics.

# Eligibility

Two pure functions decide whether a vote may be cast:

	voting.CanVote(student, election)      // flag set AND cohort eligible
	voting.IsVotingOpen(election, time.Now()) // active AND inside window

# Casting

Service.CastVote checks its preconditions in a fixed order (election
open, student eligible, candidate approved and on the position, no
prior vote) and then inserts one immutable vote row. The prior-vote
check is advisory: under concurrency both racers can pass it, and the
UNIQUE (student_id, position_id) index in the store is the actual
guarantee. A constraint violation at insert time is translated into
ErrAlreadyVoted, so callers only ever see the domain error taxonomy:

	ErrPositionNotFound
	ErrElectionNotOpen
	ErrNotEligible
	ErrCandidateNotApproved
	ErrAlreadyVoted

No retries are performed; every failure is terminal for that request.

# Results

Service.Tally returns per-candidate counts and percentages for one
position (approved candidates only), ordered by votes descending with
candidate ID as the tie-break, and flags a winner only when the leading
count is above zero. Percentages round to one decimal place and a
zero-vote position reports 0 rather than dividing by zero.

# Turnout

Service.Turnout reports, per eligible cohort, how many students could
vote and how many distinct students did, plus the overall figures.

Reads are request-time snapshots; no transactional isolation is taken
across the aggregate queries that compose one report.
*/
package voting
