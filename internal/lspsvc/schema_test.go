package lspsvc

import "testing"

func TestLoadSchemaFindsAllMessages(t *testing.T) {
	sc, err := loadSchema()
	if err != nil {
		t.Fatalf("loadSchema: %v", err)
	}
	msgs := map[string]bool{
		"openReq": sc.openReq != nil, "hoverReq": sc.hoverReq != nil, "hoverResp": sc.hoverResp != nil,
		"completionReq": sc.completionReq != nil, "completionResp": sc.completionResp != nil,
		"definitionReq": sc.definitionReq != nil, "definitionResp": sc.definitionResp != nil,
		"ack": sc.ack != nil,
	}
	for name, ok := range msgs {
		if !ok {
			t.Errorf("expected message descriptor %q to be found", name)
		}
	}
	if sc.wireSize == 0 {
		t.Error("expected a non-zero marshaled descriptor size")
	}
}
