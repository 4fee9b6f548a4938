package models

import "slices"

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of the mission.
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	c := *m
	c.AgeFrom = cloneIntPtr(m.AgeFrom)
	c.AgeTo = cloneIntPtr(m.AgeTo)
	c.DependsOn = slices.Clone(m.DependsOn)
	c.Hints = slices.Clone(m.Hints)
	c.PersonQualities = slices.Clone(m.PersonQualities)
	return &c
}

// Clone returns a deep copy of the set.
func (s *MissionSet) Clone() *MissionSet {
	if s == nil {
		return nil
	}
	c := *s
	c.Missions = slices.Clone(s.Missions)
	c.AgeFrom = cloneIntPtr(s.AgeFrom)
	c.AgeTo = cloneIntPtr(s.AgeTo)
	c.PersonQualities = slices.Clone(s.PersonQualities)
	return &c
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	if u.HomeCoordinate != nil {
		home := *u.HomeCoordinate
		c.HomeCoordinate = &home
	}
	c.Points = cloneIntPtr(u.Points)
	c.LastRatingPlace = cloneIntPtr(u.LastRatingPlace)
	c.ActiveMissionIds = slices.Clone(u.ActiveMissionIds)
	c.CompletedMissionIds = slices.Clone(u.CompletedMissionIds)
	c.FailedMissionIds = slices.Clone(u.FailedMissionIds)
	c.ActiveMissionSetIds = slices.Clone(u.ActiveMissionSetIds)
	c.MissionSetIds = slices.Clone(u.MissionSetIds)
	c.BoughtHintIds = slices.Clone(u.BoughtHintIds)
	c.PersonQualitiesWithScores = slices.Clone(u.PersonQualitiesWithScores)
	return &c
}

// Clone returns a deep copy of the request.
func (r *MissionRequest) Clone() *MissionRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.StarsCount = cloneIntPtr(r.StarsCount)
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		c.ResolvedAt = &t
	}
	c.Proof.ImageURLs = slices.Clone(r.Proof.ImageURLs)
	c.Proof.Coordinates = slices.Clone(r.Proof.Coordinates)
	c.Proof.TimeElapsed = cloneIntPtr(r.Proof.TimeElapsed)
	c.Proof.Answers = slices.Clone(r.Proof.Answers)
	return &c
}
