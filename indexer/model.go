package indexer

// sqlite models

type SyncHeight struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Company struct {
	Id          uint64 `gorm:"primaryKey" json:"id"`
	Name        string `json:"name"`
	TotalShares uint64 `json:"total_shares"`
	Height      uint64 `json:"height"`
}

type Shareholder struct {
	Id       uint64 `gorm:"primaryKey" json:"id"`
	Address  string `json:"address"`
	Shares   uint64 `json:"shares"`
	Name     string `json:"name"`
	Board    bool   `json:"board"`
	Height   uint64 `json:"height"`
	Replaced bool   `json:"replaced"`
}

type Proposal struct {
	Id              uint64 `gorm:"primaryKey" json:"id"`
	ProposerIndex   uint64 `json:"proposer_index"`
	ProposerAddress string `json:"proposer_address"`
	ProposerName    string `json:"proposer_name"`
	Kind            uint64 `json:"kind"`
	Title           string `json:"title"`
	Data            string `json:"data"`
	Threshold       uint64 `json:"threshold"`
	NewHeight       uint64 `json:"new_height"`
	SettleHeight    uint64 `json:"settle_height"`
	Status          uint64 `json:"status"`
	ForVotes        uint64 `json:"for_votes"`
	AgainstVotes    uint64 `json:"against_votes"`
	Passed          bool   `json:"passed"`
	CreateTimestamp int64  `json:"create_timestamp"`
	ExpireTimestamp int64  `json:"expire_timestamp"`
}

type Vote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterIndex   uint64 `json:"voter_index"`
	VoterAddress string `json:"voter_address"`
	VoterName    string `json:"voter_name"`
	Height       uint64 `json:"height"`
	Choice       uint64 `json:"choice"`
	Weight       uint64 `json:"weight"`
}
