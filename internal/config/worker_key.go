package config

type WorkerKeyStruct struct {
	CheatEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	CheatEventsQueue: "persist_cheat_events_queue",
}
