package gateways

// JSON ABIs of the deployed registry contracts. The node only needs the
// methods it calls, events are decoded from receipts where required.

const didRegistryABI = `[
  {"type":"function","name":"createDID","stateMutability":"nonpayable",
   "inputs":[{"name":"_did","type":"string"},{"name":"_publicKey","type":"string"},{"name":"_serviceEndpoint","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"getDIDDocument","stateMutability":"view",
   "inputs":[{"name":"_did","type":"string"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"did","type":"string"},
     {"name":"controller","type":"address"},
     {"name":"publicKey","type":"string"},
     {"name":"serviceEndpoint","type":"string"},
     {"name":"created","type":"uint256"},
     {"name":"updated","type":"uint256"},
     {"name":"active","type":"bool"}]}]},
  {"type":"function","name":"verifyDIDController","stateMutability":"view",
   "inputs":[{"name":"_did","type":"string"},{"name":"_controller","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

const credentialRegistryABI = `[
  {"type":"function","name":"issueCredential","stateMutability":"nonpayable",
   "inputs":[
     {"name":"_credentialId","type":"string"},
     {"name":"_issuerDID","type":"string"},
     {"name":"_subjectDID","type":"string"},
     {"name":"_credentialType","type":"string"},
     {"name":"_credentialHash","type":"string"},
     {"name":"_metadataURI","type":"string"},
     {"name":"_expirationDate","type":"uint256"},
     {"name":"_signature","type":"bytes"}],
   "outputs":[]},
  {"type":"function","name":"revokeCredential","stateMutability":"nonpayable",
   "inputs":[{"name":"_credentialId","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"verifyCredential","stateMutability":"view",
   "inputs":[{"name":"_credentialId","type":"string"}],
   "outputs":[
     {"name":"isValid","type":"bool"},
     {"name":"credential","type":"tuple","components":[
       {"name":"id","type":"string"},
       {"name":"issuerDID","type":"string"},
       {"name":"subjectDID","type":"string"},
       {"name":"credentialType","type":"string"},
       {"name":"credentialHash","type":"string"},
       {"name":"metadataURI","type":"string"},
       {"name":"issuanceDate","type":"uint256"},
       {"name":"expirationDate","type":"uint256"},
       {"name":"status","type":"uint8"},
       {"name":"signature","type":"bytes"}]}]},
  {"type":"function","name":"getCredentialsBySubject","stateMutability":"view",
   "inputs":[{"name":"_subjectDID","type":"string"}],
   "outputs":[{"name":"","type":"string[]"}]}
]`

const credentialVerifierABI = `[
  {"type":"function","name":"verifyCredentialWithProof","stateMutability":"view",
   "inputs":[{"name":"_credentialId","type":"string"},{"name":"_expectedHash","type":"string"}],
   "outputs":[{"name":"result","type":"tuple","components":[
     {"name":"isValid","type":"bool"},
     {"name":"credentialId","type":"string"},
     {"name":"issuerDID","type":"string"},
     {"name":"subjectDID","type":"string"},
     {"name":"verificationTimestamp","type":"uint256"},
     {"name":"reason","type":"string"}]}]},
  {"type":"function","name":"quickVerify","stateMutability":"view",
   "inputs":[{"name":"_credentialId","type":"string"}],
   "outputs":[
     {"name":"isValid","type":"bool"},
     {"name":"issuerDID","type":"string"},
     {"name":"status","type":"uint8"}]}
]`
